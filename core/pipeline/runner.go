package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kfadel/gridops/core/forecast"
	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/core/mitigation"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/narrative"
	"github.com/kfadel/gridops/core/risk"
	"github.com/kfadel/gridops/core/topology"
	"github.com/kfadel/gridops/internal/eventbus"
)

// Stage identifies the pipeline stage a failure originated from.
type Stage string

const (
	StageForecast  Stage = "forecast"
	StageRisk      Stage = "risk"
	StagePlan      Stage = "mitigation"
	StageNarrative Stage = "narrative"
)

// ErrNoUnits is returned by batch calls invoked with an empty unit
// collection.
var ErrNoUnits = errors.New("pipeline: no units provided")

// Failure records one unit's error within a batch. Sibling units are
// unaffected.
type Failure struct {
	UnitID string
	Stage  Stage
	Err    error
}

// Reason returns the human-readable failure reason.
func (f Failure) Reason() string { return f.Err.Error() }

// Config defines batch execution parameters.
type Config struct {
	// Workers bounds the number of units processed concurrently.
	Workers int `json:"workers"`
	// MinRiskScore is the assessment score at or above which mitigation
	// planning is triggered.
	MinRiskScore float64 `json:"min_risk_score"`
}

// SetDefaults applies 4 workers and the 0.7 high-risk threshold.
func (c *Config) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MinRiskScore <= 0 {
		c.MinRiskScore = 0.7
	}
}

// Result aggregates the output of a full pipeline run.
type Result struct {
	Forecasts    []model.Forecast
	Assessments  []model.RiskAssessment
	Plans        []model.MitigationPlan
	Failures     []Failure
	Attempted    int
	Enhanced     int
	FallbackUsed int
}

// Runner executes the pipeline stages over unit collections.
type Runner struct {
	cfg        Config
	forecaster *forecast.Engine
	scorer     *risk.Scorer
	simulator  *mitigation.Simulator
	narrator   *narrative.Narrator
	graph      topology.Graph
	cache      *ForecastCache
	sink       metrics.Sink
	bus        eventbus.EventBus
	log        logger.Logger
}

// NewRunner wires the pipeline stages together. sink and bus may be nil.
func NewRunner(cfg Config, fx *forecast.Engine, sc *risk.Scorer, sim *mitigation.Simulator, nr *narrative.Narrator, graph topology.Graph, cache *ForecastCache, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger) (*Runner, error) {
	if fx == nil || sc == nil || sim == nil || nr == nil || graph == nil {
		return nil, fmt.Errorf("pipeline: nil stage provided to NewRunner")
	}
	cfg.SetDefaults()
	if cache == nil {
		cache = NewForecastCache()
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Runner{
		cfg:        cfg,
		forecaster: fx,
		scorer:     sc,
		simulator:  sim,
		narrator:   nr,
		graph:      graph,
		cache:      cache,
		sink:       sink,
		bus:        bus,
		log:        log,
	}, nil
}

// ForecastAll generates forecasts for all units. Units failing with
// insufficient data are recorded and skipped.
func (r *Runner) ForecastAll(ctx context.Context, units []model.Transformer, now time.Time) ([]model.Forecast, []Failure, error) {
	if len(units) == 0 {
		return nil, nil, ErrNoUnits
	}

	results := make([]*model.Forecast, len(units))
	errs := make([]error, len(units))
	r.forEachUnit(ctx, len(units), func(i int) {
		fc, err := r.forecaster.Forecast(ctx, units[i], now)
		if err != nil {
			errs[i] = err
			return
		}
		results[i] = &fc
	})

	var forecasts []model.Forecast
	var failures []Failure
	for i, unit := range units {
		switch {
		case results[i] != nil:
			fc := *results[i]
			forecasts = append(forecasts, fc)
			r.cache.Put(fc)
			r.publish(ForecastGenerated{UnitID: unit.ID, ForecastID: fc.ID, PeakPct: fc.PeakPct})
			r.recordErr(r.sink.RecordForecast(metrics.ForecastEvent{
				UnitID:       unit.ID,
				PeakPct:      fc.PeakPct,
				HorizonHours: fc.HorizonHours,
				Time:         now,
			}))
		case errs[i] != nil:
			failures = append(failures, r.fail(unit.ID, StageForecast, errs[i], now))
		}
	}
	return forecasts, failures, nil
}

// ScoreAll assesses all units that have a forecast in the cache.
func (r *Runner) ScoreAll(ctx context.Context, units []model.Transformer, now time.Time) ([]model.RiskAssessment, []Failure, error) {
	if len(units) == 0 {
		return nil, nil, ErrNoUnits
	}

	results := make([]*model.RiskAssessment, len(units))
	errs := make([]error, len(units))
	r.forEachUnit(ctx, len(units), func(i int) {
		fc, ok := r.cache.LatestForecast(units[i].ID)
		if !ok {
			errs[i] = fmt.Errorf("no forecast available for %s", units[i].Name)
			return
		}
		a, err := r.scorer.Score(ctx, units[i], fc, now)
		if err != nil {
			errs[i] = err
			return
		}
		results[i] = &a
	})

	var assessments []model.RiskAssessment
	var failures []Failure
	for i, unit := range units {
		switch {
		case results[i] != nil:
			a := *results[i]
			assessments = append(assessments, a)
			r.publish(RiskAssessed{UnitID: unit.ID, Score: a.Score, Level: a.Level})
			if rec, ok := r.sink.(metrics.RiskRecorder); ok {
				r.recordErr(rec.RecordRisk(metrics.RiskEvent{UnitID: unit.ID, Score: a.Score, Level: a.Level, Time: now}))
			}
		case errs[i] != nil:
			failures = append(failures, r.fail(unit.ID, StageRisk, errs[i], now))
		}
	}
	return assessments, failures, nil
}

// PlanAll simulates mitigation for every assessment at or above the
// configured risk threshold, highest score first. Expected simulator outcomes
// (not overloaded, no neighbors, no viable plan) are recorded as failures
// with their reason, like any other per-unit error.
func (r *Runner) PlanAll(ctx context.Context, assessments []model.RiskAssessment, now time.Time) ([]model.MitigationPlan, []Failure, error) {
	if len(assessments) == 0 {
		return nil, nil, ErrNoUnits
	}

	eligible := make([]model.RiskAssessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Score >= r.cfg.MinRiskScore {
			eligible = append(eligible, a)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Score > eligible[j].Score })

	results := make([][]model.MitigationPlan, len(eligible))
	errs := make([]error, len(eligible))
	r.forEachUnit(ctx, len(eligible), func(i int) {
		a := eligible[i]
		unit, ok, err := r.graph.Unit(ctx, a.UnitID)
		if err != nil {
			errs[i] = err
			return
		}
		if !ok {
			errs[i] = fmt.Errorf("unknown unit %s", a.UnitID)
			return
		}
		fc, ok := r.cache.LatestForecast(a.UnitID)
		if !ok {
			errs[i] = fmt.Errorf("no forecast available for %s", unit.Name)
			return
		}
		plans, err := r.simulator.GeneratePlans(ctx, a, fc, unit)
		if err != nil {
			errs[i] = err
			return
		}
		results[i] = plans
	})

	var plans []model.MitigationPlan
	var failures []Failure
	for i, a := range eligible {
		switch {
		case results[i] != nil:
			plans = append(plans, results[i]...)
			r.publish(PlansGenerated{UnitID: a.UnitID, Count: len(results[i])})
			if rec, ok := r.sink.(metrics.PlanRecorder); ok {
				r.recordErr(rec.RecordPlan(metrics.PlanEvent{
					UnitID:        a.UnitID,
					Plans:         len(results[i]),
					BestReduction: results[i][0].RiskReduction,
					Time:          now,
				}))
			}
		case errs[i] != nil:
			failures = append(failures, r.fail(a.UnitID, StagePlan, errs[i], now))
		}
	}
	return plans, failures, nil
}

// NarrateAll enhances plans in place, sequentially. The narrator never fails;
// the returned counts split terminal outcomes. The context is checked between
// plans so a batch can be stopped without corrupting enhanced plans.
func (r *Runner) NarrateAll(ctx context.Context, plans []model.MitigationPlan) (enhanced, fallback int) {
	for i := range plans {
		if ctx.Err() != nil {
			return enhanced, fallback
		}
		start := time.Now()
		outcome := r.narrator.Enhance(ctx, &plans[i])
		if outcome == narrative.OutcomeEnhanced {
			enhanced++
		} else {
			fallback++
		}
		r.publish(PlanEnhanced{PlanID: plans[i].ID, Outcome: outcome})
		if rec, ok := r.sink.(metrics.NarrativeRecorder); ok {
			r.recordErr(rec.RecordNarrative(metrics.NarrativeEvent{
				UnitID:  plans[i].FromUnit,
				Source:  plans[i].NarrativeSource,
				Latency: time.Since(start),
				Time:    start,
			}))
		}
	}
	return enhanced, fallback
}

// Run executes the full pipeline over all active units of the graph.
func (r *Runner) Run(ctx context.Context, now time.Time) (Result, error) {
	units, err := r.graph.Units(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(units) == 0 {
		return Result{}, ErrNoUnits
	}

	res := Result{Attempted: len(units)}

	forecasts, failures, err := r.ForecastAll(ctx, units, now)
	if err != nil {
		return res, err
	}
	res.Forecasts = forecasts
	res.Failures = append(res.Failures, failures...)

	forecasted := unitsWithForecast(units, r.cache)
	if len(forecasted) > 0 {
		assessments, failures, err := r.ScoreAll(ctx, forecasted, now)
		if err != nil {
			return res, err
		}
		res.Assessments = assessments
		res.Failures = append(res.Failures, failures...)
	}

	if len(res.Assessments) > 0 {
		plans, failures, err := r.PlanAll(ctx, res.Assessments, now)
		if err != nil && !errors.Is(err, ErrNoUnits) {
			return res, err
		}
		res.Plans = plans
		res.Failures = append(res.Failures, failures...)
	}

	res.Enhanced, res.FallbackUsed = r.NarrateAll(ctx, res.Plans)

	r.log.Infof("pipeline run: %d units, %d forecasts, %d assessments, %d plans, %d failures",
		len(units), len(res.Forecasts), len(res.Assessments), len(res.Plans), len(res.Failures))
	return res, nil
}

// forEachUnit fans n indexed jobs out over the worker pool. Workers stop
// picking up jobs once the context is done; jobs already started run to
// completion.
func (r *Runner) forEachUnit(ctx context.Context, n int, fn func(i int)) {
	workers := r.cfg.Workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				fn(i)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

func (r *Runner) fail(unitID string, stage Stage, err error, now time.Time) Failure {
	f := Failure{UnitID: unitID, Stage: stage, Err: err}
	r.log.Warnf("%s stage failed for %s: %v", stage, unitID, err)
	r.publish(UnitFailed{UnitID: unitID, Stage: stage, Reason: f.Reason()})
	if rec, ok := r.sink.(metrics.FailureRecorder); ok {
		r.recordErr(rec.RecordFailure(metrics.FailureEvent{UnitID: unitID, Stage: string(stage), Time: now}))
	}
	return f
}

func (r *Runner) publish(e eventbus.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

func (r *Runner) recordErr(err error) {
	if err != nil {
		r.log.Warnf("metrics sink: %v", err)
	}
}

func unitsWithForecast(units []model.Transformer, cache *ForecastCache) []model.Transformer {
	out := make([]model.Transformer, 0, len(units))
	for _, u := range units {
		if _, ok := cache.LatestForecast(u.ID); ok {
			out = append(out, u)
		}
	}
	return out
}
