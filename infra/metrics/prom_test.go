package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kfadel/gridops/core/factory"
	coremetrics "github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/core/model"
)

func TestPromSinkRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	// touch metrics so they are exported
	_ = sink.RecordForecast(coremetrics.ForecastEvent{UnitID: "T-07", PeakPct: 115})
	_ = sink.RecordRisk(coremetrics.RiskEvent{UnitID: "T-07", Score: 0.78, Level: model.RiskHigh})
	_ = sink.RecordPlan(coremetrics.PlanEvent{UnitID: "T-07", Plans: 2})
	_ = sink.RecordNarrative(coremetrics.NarrativeEvent{UnitID: "T-07", Source: model.NarrativeFallback, Latency: 50 * time.Millisecond})
	_ = sink.RecordFailure(coremetrics.FailureEvent{UnitID: "T-03", Stage: "forecast"})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"gridops_forecasts_total",
		"gridops_assessments_total",
		"gridops_plans_total",
		"gridops_narratives_total",
		"gridops_narrative_latency_seconds",
		"gridops_failures_total",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}

	// both sinks must feed the collectors the registry exports
	_ = first.RecordForecast(coremetrics.ForecastEvent{UnitID: "T-07"})
	_ = second.RecordForecast(coremetrics.ForecastEvent{UnitID: "T-07"})
	_ = second.RecordRisk(coremetrics.RiskEvent{UnitID: "T-07", Score: 0.78, Level: model.RiskHigh})

	if got := counterValue(t, reg, "gridops_forecasts_total"); got != 2 {
		t.Fatalf("gridops_forecasts_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "gridops_assessments_total"); got != 1 {
		t.Fatalf("gridops_assessments_total = %v, want 1", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	multi := NewMultiSink(a, b)

	_ = multi.RecordForecast(coremetrics.ForecastEvent{})
	_ = multi.RecordRisk(coremetrics.RiskEvent{})

	if a.forecasts != 1 || b.forecasts != 1 {
		t.Fatalf("forecast fan-out: a=%d b=%d", a.forecasts, b.forecasts)
	}
	if a.risks != 1 || b.risks != 1 {
		t.Fatalf("risk fan-out: a=%d b=%d", a.risks, b.risks)
	}
}

func TestSinkFactory(t *testing.T) {
	if _, err := coremetrics.NewSink(factory.ModuleConfig{Type: "nop"}); err != nil {
		t.Fatalf("nop sink: %v", err)
	}
	if _, err := coremetrics.NewSink(factory.ModuleConfig{Type: "statsd"}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}

type countingSink struct {
	forecasts int
	risks     int
}

func (s *countingSink) RecordForecast(coremetrics.ForecastEvent) error { s.forecasts++; return nil }
func (s *countingSink) RecordRisk(coremetrics.RiskEvent) error         { s.risks++; return nil }
