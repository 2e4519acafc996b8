package model

import "time"

// RiskLevel buckets a risk score for operator triage.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// LevelForScore maps a risk score to its level. The boundaries are fixed at
// 0.30 and 0.70.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score < 0.30:
		return RiskLow
	case score >= 0.70:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// RiskComponents is the fixed per-factor breakdown of a risk score, each
// component in [0,1].
type RiskComponents struct {
	Overload  float64 `json:"overload"`
	Thermal   float64 `json:"thermal"`
	Cascading float64 `json:"cascading"`
}

// Explanation is the operator-readable justification of an assessment.
type Explanation struct {
	Primary         string   `json:"primary"`
	Bullets         []string `json:"bullets"`
	Recommendations []string `json:"recommendations"`
}

// RiskAssessment is the scored outcome of one forecast for one transformer.
// Immutable once created; downstream stages reference it by ID.
type RiskAssessment struct {
	ID          string         `json:"id"`
	UnitID      string         `json:"unit_id"`
	ForecastID  string         `json:"forecast_id"`
	AssessedAt  time.Time      `json:"assessed_at"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Score       float64        `json:"score"` // [0,1]
	Level       RiskLevel      `json:"level"`
	OverloadPct float64        `json:"overload_pct"`
	Confidence  float64        `json:"confidence"` // [0,1]
	Components  RiskComponents `json:"components"`
	Explanation Explanation    `json:"explanation"`
}
