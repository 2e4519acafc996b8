package mitigation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/risk"
	"github.com/kfadel/gridops/core/telemetry"
	"github.com/kfadel/gridops/core/topology"
)

// minTransferKW is the smallest transfer worth executing. Candidates below
// this are skipped both on available capacity and on the final transfer size.
const minTransferKW = 50

// defaultLoadAssumption is the load fraction assumed for a neighbor with no
// reading and no forecast.
const defaultLoadAssumption = 0.7

// Config defines simulation parameters.
type Config struct {
	// MaxPlans caps the number of ranked plans returned per assessment.
	MaxPlans int `json:"max_plans"`
	// SafetyMargin is the fraction of a neighbor's available capacity that
	// may be consumed by a transfer.
	SafetyMargin float64 `json:"safety_margin"`
	// MaxTransferPct is the maximum fraction of the source peak that may be
	// transferred.
	MaxTransferPct float64 `json:"max_transfer_pct"`
}

// SetDefaults applies the standard simulation parameters.
func (c *Config) SetDefaults() {
	if c.MaxPlans <= 0 {
		c.MaxPlans = 3
	}
	if c.SafetyMargin <= 0 {
		c.SafetyMargin = 0.8
	}
	if c.MaxTransferPct <= 0 {
		c.MaxTransferPct = 0.3
	}
}

// ForecastSource resolves the latest forecast for a unit. Used to estimate a
// neighbor's load when no recent reading exists. May be nil.
type ForecastSource interface {
	LatestForecast(unitID string) (model.Forecast, bool)
}

// Simulator generates ranked load-transfer plans for overloaded transformers.
type Simulator struct {
	cfg       Config
	store     telemetry.Store
	graph     topology.Graph
	forecasts ForecastSource
	log       logger.Logger
}

// NewSimulator creates a simulator. forecasts may be nil if no forecast
// lookup is available for neighbor load estimation.
func NewSimulator(cfg Config, store telemetry.Store, graph topology.Graph, forecasts ForecastSource, log logger.Logger) *Simulator {
	cfg.SetDefaults()
	return &Simulator{cfg: cfg, store: store, graph: graph, forecasts: forecasts, log: log}
}

// GeneratePlans builds up to MaxPlans candidate transfer plans for the
// assessed unit, best risk reduction first. The forecast must be the one the
// assessment references.
func (s *Simulator) GeneratePlans(ctx context.Context, assessment model.RiskAssessment, fc model.Forecast, unit model.Transformer) ([]model.MitigationPlan, error) {
	overloadKW := math.Max(0, fc.PeakKW-unit.SafeCapacityKW())
	if overloadKW <= 0 {
		return nil, &NotOverloadedError{Unit: unit.Name}
	}

	links, err := s.graph.OutgoingLinks(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, &NoNeighborsError{Unit: unit.Name}
	}

	var candidates []model.MitigationPlan
	for _, link := range links {
		neighbor, ok, err := s.graph.Unit(ctx, link.ToUnit)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		available, err := s.availableCapacity(ctx, neighbor)
		if err != nil {
			return nil, err
		}
		if available < minTransferKW {
			continue
		}

		transferKW := math.Min(overloadKW, link.MaxTransferKW)
		transferKW = math.Min(transferKW, available*s.cfg.SafetyMargin)
		transferKW = math.Min(transferKW, fc.PeakKW*s.cfg.MaxTransferPct)
		if transferKW < minTransferKW {
			continue
		}

		riskAfter := s.simulateTransfer(assessment, fc, unit, transferKW)
		candidates = append(candidates, s.buildPlan(assessment, fc, unit, neighbor, link, transferKW, riskAfter))
	}

	if len(candidates) == 0 {
		return nil, &NoViablePlanError{Unit: unit.Name}
	}

	// Stable sort: ties keep link iteration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RiskReduction > candidates[j].RiskReduction
	})
	if len(candidates) > s.cfg.MaxPlans {
		candidates = candidates[:s.cfg.MaxPlans]
	}

	s.log.Debugw("mitigation plans generated", map[string]any{
		"unit":           unit.Name,
		"plans":          len(candidates),
		"best_reduction": candidates[0].RiskReduction,
	})
	return candidates, nil
}

// availableCapacity estimates the headroom on a neighbor: safe capacity minus
// its current load. The load estimate prefers the latest reading, then the
// latest forecast peak, then a conservative 70% of rated capacity.
func (s *Simulator) availableCapacity(ctx context.Context, neighbor model.Transformer) (float64, error) {
	var currentKW float64
	if latest, ok, err := s.store.LatestReading(ctx, neighbor.ID); err != nil {
		return 0, err
	} else if ok {
		currentKW = latest.LoadKW
	} else if s.forecasts != nil {
		if fc, ok := s.forecasts.LatestForecast(neighbor.ID); ok {
			currentKW = fc.PeakKW
		} else {
			currentKW = neighbor.RatedKW() * defaultLoadAssumption
		}
	} else {
		currentKW = neighbor.RatedKW() * defaultLoadAssumption
	}
	return math.Max(0, neighbor.SafeCapacityKW()-currentKW), nil
}

// simulateTransfer recomputes only the overload component against the reduced
// peak. Thermal and cascading carry over from the assessment: a transfer is
// assumed not to change ambient heat or the cascading picture.
func (s *Simulator) simulateTransfer(assessment model.RiskAssessment, fc model.Forecast, unit model.Transformer, transferKW float64) float64 {
	newPeakPct := (fc.PeakKW - transferKW) / unit.RatedKW() * 100
	comps := model.RiskComponents{
		Overload:  risk.OverloadComponent(newPeakPct),
		Thermal:   assessment.Components.Thermal,
		Cascading: assessment.Components.Cascading,
	}
	return round3(risk.Combine(comps))
}

func (s *Simulator) buildPlan(assessment model.RiskAssessment, fc model.Forecast, unit, neighbor model.Transformer, link model.Link, transferKW, riskAfter float64) model.MitigationPlan {
	switchLabel := link.SwitchLabel()
	loadAfterPct := round2((fc.PeakKW - transferKW) / unit.RatedKW() * 100)

	return model.MitigationPlan{
		ID:              uuid.NewString(),
		AssessmentID:    assessment.ID,
		FromUnit:        unit.ID,
		FromName:        unit.Name,
		ToUnit:          neighbor.ID,
		ToName:          neighbor.Name,
		TransferKW:      round2(transferKW),
		SwitchName:      switchLabel,
		LinkCapacityKW:  link.MaxTransferKW,
		RiskBefore:      assessment.Score,
		RiskAfter:       riskAfter,
		RiskReduction:   round3(assessment.Score - riskAfter),
		LoadBeforePct:   fc.PeakPct,
		LoadAfterPct:    loadAfterPct,
		Narrative:       draftNarrative(unit.Name, neighbor.Name, switchLabel, transferKW),
		NarrativeSource: model.NarrativeTemplated,
	}
}

// draftNarrative is the simulator's placeholder text, replaced by the
// narrator during enhancement.
func draftNarrative(fromName, toName, switchLabel string, transferKW float64) model.Narrative {
	return model.Narrative{
		Summary: fmt.Sprintf("Transfer %.0f kW from %s to %s", transferKW, fromName, toName),
		OperatorSteps: []string{
			fmt.Sprintf("1. Verify %s is operational", switchLabel),
			fmt.Sprintf("2. Close %s to transfer load", switchLabel),
			"3. Monitor both transformers for 10 minutes",
			fmt.Sprintf("4. Verify %s load drops below 90%%", fromName),
		},
		FieldChecklist: []string{
			"PPE verification",
			"Lockout/tagout procedures followed",
			"Communication equipment functional",
		},
		RollbackSteps: []string{
			fmt.Sprintf("1. If voltage deviation > 1.05 pu, reopen %s", switchLabel),
			"2. Notify control room immediately",
			"3. Record outcome in work order notes",
		},
		Assumptions: []string{
			"Forecast error margin ±6%",
			"Weather conditions remain stable",
			"No concurrent outages in area",
		},
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
