package pipeline

import (
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/narrative"
)

// ForecastGenerated is published after each successful forecast.
type ForecastGenerated struct {
	UnitID     string
	ForecastID string
	PeakPct    float64
}

// RiskAssessed is published after each successful assessment.
type RiskAssessed struct {
	UnitID string
	Score  float64
	Level  model.RiskLevel
}

// PlansGenerated is published after each successful simulation.
type PlansGenerated struct {
	UnitID string
	Count  int
}

// PlanEnhanced is published after each plan enhancement.
type PlanEnhanced struct {
	PlanID  string
	Outcome narrative.Outcome
}

// UnitFailed is published for each per-unit failure.
type UnitFailed struct {
	UnitID string
	Stage  Stage
	Reason string
}
