package metrics

import (
	"time"

	"github.com/kfadel/gridops/core/model"
)

// ForecastEvent records one completed forecast.
type ForecastEvent struct {
	UnitID       string
	PeakPct      float64
	HorizonHours int
	Time         time.Time
}

// RiskEvent records one completed risk assessment.
type RiskEvent struct {
	UnitID string
	Score  float64
	Level  model.RiskLevel
	Time   time.Time
}

// PlanEvent records the outcome of one mitigation simulation.
type PlanEvent struct {
	UnitID        string
	Plans         int
	BestReduction float64
	Time          time.Time
}

// NarrativeEvent records one plan enhancement.
type NarrativeEvent struct {
	UnitID  string
	Source  model.NarrativeSource
	Latency time.Duration
	Time    time.Time
}

// FailureEvent records a per-unit failure within a batch.
type FailureEvent struct {
	UnitID string
	Stage  string
	Time   time.Time
}

// Sink records forecast events. All sinks implement at least this.
type Sink interface {
	RecordForecast(ev ForecastEvent) error
}

// RiskRecorder records risk assessment events.
type RiskRecorder interface {
	RecordRisk(ev RiskEvent) error
}

// PlanRecorder records mitigation plan events.
type PlanRecorder interface {
	RecordPlan(ev PlanEvent) error
}

// NarrativeRecorder records plan enhancement events.
type NarrativeRecorder interface {
	RecordNarrative(ev NarrativeEvent) error
}

// FailureRecorder records batch failures.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordForecast(ForecastEvent) error   { return nil }
func (NopSink) RecordRisk(RiskEvent) error           { return nil }
func (NopSink) RecordPlan(PlanEvent) error           { return nil }
func (NopSink) RecordNarrative(NarrativeEvent) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error     { return nil }
