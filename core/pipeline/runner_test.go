package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kfadel/gridops/core/forecast"
	"github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/core/mitigation"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/narrative"
	"github.com/kfadel/gridops/core/risk"
	"github.com/kfadel/gridops/core/telemetry"
	"github.com/kfadel/gridops/core/topology"
	"github.com/kfadel/gridops/infra/logger"
	"github.com/kfadel/gridops/internal/eventbus"
)

var runAt = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

// countingSink implements every optional recorder and tallies events.
type countingSink struct {
	forecasts  int
	risks      int
	plans      int
	narratives int
	failures   int
}

func (s *countingSink) RecordForecast(metrics.ForecastEvent) error   { s.forecasts++; return nil }
func (s *countingSink) RecordRisk(metrics.RiskEvent) error           { s.risks++; return nil }
func (s *countingSink) RecordPlan(metrics.PlanEvent) error           { s.plans++; return nil }
func (s *countingSink) RecordNarrative(metrics.NarrativeEvent) error { s.narratives++; return nil }
func (s *countingSink) RecordFailure(metrics.FailureEvent) error     { s.failures++; return nil }

// testGrid is a two-unit grid where T-07 runs far over capacity and T-09 has
// headroom, tied by a 300 kW link.
func testGrid(t *testing.T) (*telemetry.MemoryStore, *topology.MemoryGraph) {
	t.Helper()
	store := telemetry.NewMemoryStore()
	graph := topology.NewMemoryGraph()

	graph.AddUnit(model.Transformer{ID: "T-07", Name: "T-07", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAN, InstallYear: 2017, Active: true})
	graph.AddUnit(model.Transformer{ID: "T-09", Name: "T-09", RatedKVA: 630, MaxLoadPct: 90, Cooling: model.CoolingONAF, InstallYear: 2022, Active: true})
	graph.AddLink(model.Link{FromUnit: "T-07", ToUnit: "T-09", MaxTransferKW: 300, SwitchName: "SW-03", Active: true})

	seed(t, store, "T-07", 500)
	seed(t, store, "T-09", 100)
	return store, graph
}

// seed writes a week of hourly readings at a constant load with 40C ambient.
func seed(t *testing.T, store *telemetry.MemoryStore, unitID string, loadKW float64) {
	t.Helper()
	temp := 40.0
	start := runAt.Add(-7 * 24 * time.Hour)
	for h := 0; h < 7*24; h++ {
		err := store.Append(context.Background(), model.Reading{
			UnitID:    unitID,
			Timestamp: start.Add(time.Duration(h) * time.Hour),
			LoadKW:    loadKW,
			TempC:     &temp,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func newTestRunner(t *testing.T, store *telemetry.MemoryStore, graph *topology.MemoryGraph, sink metrics.Sink, bus eventbus.EventBus) *Runner {
	t.Helper()
	log := logger.NopLogger{}
	cache := NewForecastCache()
	engine := forecast.NewEngine(forecast.Config{}, store, log)
	scorer := risk.NewScorer(store, graph, log)
	sim := mitigation.NewSimulator(mitigation.Config{}, store, graph, cache, log)
	narrator := narrative.NewNarrator(narrative.Config{MaxRetries: 1}, nil, log)

	r, err := NewRunner(Config{Workers: 2}, engine, scorer, sim, narrator, graph, cache, sink, bus, log)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r
}

func TestRunFullPipeline(t *testing.T) {
	store, graph := testGrid(t)
	sink := &countingSink{}
	bus := eventbus.New()
	sub := bus.Subscribe()
	r := newTestRunner(t, store, graph, sink, bus)

	res, err := r.Run(context.Background(), runAt)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Attempted != 2 {
		t.Fatalf("attempted = %d", res.Attempted)
	}
	if len(res.Forecasts) != 2 {
		t.Fatalf("forecasts = %d", len(res.Forecasts))
	}
	if len(res.Assessments) != 2 {
		t.Fatalf("assessments = %d", len(res.Assessments))
	}
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	if len(res.Plans) == 0 {
		t.Fatal("expected at least one plan for the overloaded unit")
	}
	for _, p := range res.Plans {
		if p.FromUnit != "T-07" {
			t.Fatalf("plan source = %s", p.FromUnit)
		}
		if p.NarrativeSource != model.NarrativeFallback {
			t.Fatalf("expected fallback narrative without backend, got %q", p.NarrativeSource)
		}
	}
	if res.Enhanced != 0 || res.FallbackUsed != len(res.Plans) {
		t.Fatalf("narration counts: enhanced=%d fallback=%d", res.Enhanced, res.FallbackUsed)
	}

	if sink.forecasts != 2 || sink.risks != 2 || sink.plans != 1 || sink.narratives != len(res.Plans) {
		t.Fatalf("sink counts: %+v", *sink)
	}

	bus.Close()
	var sawForecast, sawPlan bool
	for ev := range sub {
		switch ev.(type) {
		case ForecastGenerated:
			sawForecast = true
		case PlansGenerated:
			sawPlan = true
		}
	}
	if !sawForecast || !sawPlan {
		t.Fatalf("missing bus events: forecast=%v plan=%v", sawForecast, sawPlan)
	}
}

func TestRunIsolatesPerUnitFailures(t *testing.T) {
	store, graph := testGrid(t)
	// a unit with sparse history fails forecasting without affecting siblings
	graph.AddUnit(model.Transformer{ID: "T-03", Name: "T-03", RatedKVA: 500, MaxLoadPct: 90, Cooling: model.CoolingONAF, InstallYear: 2020, Active: true})
	for h := 0; h < 5; h++ {
		_ = store.Append(context.Background(), model.Reading{UnitID: "T-03", Timestamp: runAt.Add(-time.Duration(h+1) * time.Hour), LoadKW: 100})
	}
	sink := &countingSink{}
	r := newTestRunner(t, store, graph, sink, nil)

	res, err := r.Run(context.Background(), runAt)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Forecasts) != 2 {
		t.Fatalf("forecasts = %d", len(res.Forecasts))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	f := res.Failures[0]
	if f.UnitID != "T-03" || f.Stage != StageForecast {
		t.Fatalf("unexpected failure: %+v", f)
	}
	if !forecast.IsInsufficientData(f.Err) {
		t.Fatalf("unexpected failure cause: %v", f.Err)
	}
	if sink.failures != 1 {
		t.Fatalf("failure not recorded: %+v", *sink)
	}
}

func TestRunNoUnits(t *testing.T) {
	r := newTestRunner(t, telemetry.NewMemoryStore(), topology.NewMemoryGraph(), nil, nil)

	_, err := r.Run(context.Background(), runAt)
	if !errors.Is(err, ErrNoUnits) {
		t.Fatalf("expected ErrNoUnits, got %v", err)
	}
}

func TestForecastAllEmptyInput(t *testing.T) {
	store, graph := testGrid(t)
	r := newTestRunner(t, store, graph, nil, nil)

	_, _, err := r.ForecastAll(context.Background(), nil, runAt)
	if !errors.Is(err, ErrNoUnits) {
		t.Fatalf("expected ErrNoUnits, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	store, graph := testGrid(t)
	r := newTestRunner(t, store, graph, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx, runAt)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Forecasts) != 0 || len(res.Plans) != 0 {
		t.Fatalf("work done despite cancelled context: %+v", res)
	}
}

func TestScoreAllRequiresForecast(t *testing.T) {
	store, graph := testGrid(t)
	r := newTestRunner(t, store, graph, nil, nil)

	units, err := graph.Units(context.Background())
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	// no ForecastAll ran, so the cache is empty
	_, failures, err := r.ScoreAll(context.Background(), units, runAt)
	if err != nil {
		t.Fatalf("score all: %v", err)
	}
	if len(failures) != len(units) {
		t.Fatalf("expected all units to fail, got %d of %d", len(failures), len(units))
	}
	for _, f := range failures {
		if f.Stage != StageRisk {
			t.Fatalf("unexpected stage: %+v", f)
		}
	}
}
