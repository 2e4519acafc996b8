package risk

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/telemetry"
	"github.com/kfadel/gridops/core/topology"
)

// Component weights of the risk score.
const (
	WeightOverload  = 0.6
	WeightThermal   = 0.2
	WeightCascading = 0.2
)

// neighborStressPct is the load percentage above which a neighbor counts as
// too stressed to absorb transferred load.
const neighborStressPct = 85

// Scorer produces risk assessments from forecasts, telemetry and topology.
type Scorer struct {
	store telemetry.Store
	graph topology.Graph
	log   logger.Logger
}

// NewScorer creates a risk scorer.
func NewScorer(store telemetry.Store, graph topology.Graph, log logger.Logger) *Scorer {
	return &Scorer{store: store, graph: graph, log: log}
}

// Score assesses the unit against its forecast. It returns an
// EmptyForecastError when the forecast has no predictions.
func (s *Scorer) Score(ctx context.Context, unit model.Transformer, fc model.Forecast, now time.Time) (model.RiskAssessment, error) {
	if len(fc.Predictions) == 0 {
		return model.RiskAssessment{}, &EmptyForecastError{Unit: unit.Name}
	}

	overload := OverloadComponent(fc.PeakPct)
	thermal, err := s.thermalComponent(ctx, unit, now)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	cascading, err := s.cascadingComponent(ctx, unit)
	if err != nil {
		return model.RiskAssessment{}, err
	}

	comps := model.RiskComponents{
		Overload:  round3(overload),
		Thermal:   round3(thermal),
		Cascading: round3(cascading),
	}
	score := round3(Combine(comps))
	start, end := fc.Window()

	assessment := model.RiskAssessment{
		ID:          uuid.NewString(),
		UnitID:      unit.ID,
		ForecastID:  fc.ID,
		AssessedAt:  now,
		WindowStart: start,
		WindowEnd:   end,
		Score:       score,
		Level:       model.LevelForScore(score),
		OverloadPct: fc.PeakPct,
		Confidence:  round3(fc.MeanConfidence()),
		Components:  comps,
		Explanation: buildExplanation(unit, fc, comps, now),
	}

	s.log.Debugw("risk assessed", map[string]any{
		"unit":  unit.Name,
		"score": score,
		"level": string(assessment.Level),
	})
	return assessment, nil
}

// Combine applies the fixed component weights.
func Combine(c model.RiskComponents) float64 {
	return WeightOverload*c.Overload + WeightThermal*c.Thermal + WeightCascading*c.Cascading
}

// OverloadComponent maps the predicted peak load percentage to the overload
// risk component: 0 up to 90%, 0.30-0.70 over (90,100], 0.70-1.0 over
// (100,120], capped at 1.0.
func OverloadComponent(loadPct float64) float64 {
	switch {
	case loadPct <= 90:
		return 0
	case loadPct <= 100:
		return 0.3 + (loadPct-90)*0.04
	default:
		return math.Min(0.7+(loadPct-100)*0.015, 1.0)
	}
}

// thermalComponent scores temperature-driven vulnerability, adjusted for
// transformer age and cooling type. Without any temperature reading a fixed
// conservative 0.20 is used.
func (s *Scorer) thermalComponent(ctx context.Context, unit model.Transformer, now time.Time) (float64, error) {
	reading, ok, err := s.store.LatestTemperature(ctx, unit.ID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0.2, nil
	}
	temp := *reading.TempC

	var base float64
	switch {
	case temp <= 25:
		base = 0
	case temp <= 30:
		base = (temp - 25) * 0.06
	case temp <= 35:
		base = 0.3 + (temp-30)*0.06
	case temp <= 40:
		base = 0.6 + (temp-35)*0.06
	default:
		base = math.Min(0.9+(temp-40)*0.02, 1.0)
	}

	ageFactor := 1.0
	switch age := unit.Age(now); {
	case age > 25:
		ageFactor = 1.3
	case age > 15:
		ageFactor = 1.1
	}

	coolingFactor := 1.0
	if unit.Cooling == model.CoolingONAF {
		coolingFactor = 0.8
	}

	return math.Min(base*ageFactor*coolingFactor, 1.0), nil
}

// cascadingComponent scores the unit's inability to shed load. An isolated
// unit scores 0.5; otherwise the score follows the fraction of neighbors
// whose latest load exceeds the stress threshold.
func (s *Scorer) cascadingComponent(ctx context.Context, unit model.Transformer) (float64, error) {
	links, err := s.graph.OutgoingLinks(ctx, unit.ID)
	if err != nil {
		return 0, err
	}
	if len(links) == 0 {
		return 0.5, nil
	}

	stressed := 0
	for _, l := range links {
		latest, ok, err := s.store.LatestReading(ctx, l.ToUnit)
		if err != nil {
			return 0, err
		}
		if ok && latest.LoadPct > neighborStressPct {
			stressed++
		}
	}

	ratio := float64(stressed) / float64(len(links))
	switch {
	case ratio == 0:
		return 0.0, nil
	case ratio < 0.5:
		return 0.3, nil
	default:
		return 0.7, nil
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
