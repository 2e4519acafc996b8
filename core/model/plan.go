package model

// NarrativeSource identifies how a plan narrative was produced.
type NarrativeSource string

const (
	// NarrativeTemplated marks the simulator's placeholder text, present on a
	// plan before enhancement.
	NarrativeTemplated NarrativeSource = "template_draft"
	// NarrativeLLM marks text generated and validated from the text backend.
	NarrativeLLM NarrativeSource = "llm"
	// NarrativeFallback marks the deterministic template fallback.
	NarrativeFallback NarrativeSource = "template_fallback"
)

// Narrative holds the operator-facing instructions of a mitigation plan.
type Narrative struct {
	Summary        string   `json:"summary"`
	OperatorSteps  []string `json:"operator_steps"`
	FieldChecklist []string `json:"field_checklist"`
	RollbackSteps  []string `json:"rollback_steps"`
	Assumptions    []string `json:"assumptions"`
}

// MitigationPlan proposes a single load transfer from an overloaded
// transformer to one neighbor. Plans are created by the mitigation simulator
// with templated narrative placeholders; the narrator is the only stage
// permitted to mutate an existing plan, and only its narrative fields.
type MitigationPlan struct {
	ID             string  `json:"id"`
	AssessmentID   string  `json:"assessment_id"`
	FromUnit       string  `json:"from_unit"`
	FromName       string  `json:"from_name"`
	ToUnit         string  `json:"to_unit"`
	ToName         string  `json:"to_name"`
	TransferKW     float64 `json:"transfer_kw"`
	SwitchName     string  `json:"switch_name"`
	LinkCapacityKW float64 `json:"link_capacity_kw"`
	RiskBefore     float64 `json:"risk_before"`
	RiskAfter      float64 `json:"risk_after"`
	RiskReduction  float64 `json:"risk_reduction"`
	LoadBeforePct  float64 `json:"load_before_pct"`
	LoadAfterPct   float64 `json:"load_after_pct"`

	Narrative           Narrative       `json:"narrative"`
	NarrativeConfidence float64         `json:"narrative_confidence"` // [0,1]
	NarrativeSource     NarrativeSource `json:"narrative_source"`
}
