package narrative

import "context"

// Backend is the generative-text service contract. Complete sends a system
// prompt and a user prompt and returns the raw model output, expected to be a
// JSON document matching the bundle schema.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Bundle is the fixed response schema of the backend. All narrative text on a
// plan is replaced atomically from a validated bundle.
type Bundle struct {
	ExecutiveSummary string   `json:"executive_summary"`
	OperatorSteps    []string `json:"operator_steps"`
	FieldChecklist   []string `json:"field_checklist"`
	RollbackSteps    []string `json:"rollback_steps"`
	Assumptions      []string `json:"assumptions"`
	Confidence       float64  `json:"confidence"`
}
