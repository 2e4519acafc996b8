package narrative

import (
	"encoding/json"
	"fmt"
)

// minSummaryLength is the minimum executive summary length in characters.
const minSummaryLength = 50

var requiredKeys = []string{
	"executive_summary",
	"operator_steps",
	"field_checklist",
	"rollback_steps",
	"assumptions",
	"confidence",
}

// parseBundle decodes and validates a raw backend response. Any deviation
// from the schema yields a SchemaValidationError.
func parseBundle(raw string) (Bundle, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Bundle{}, &SchemaValidationError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return Bundle{}, &SchemaValidationError{Reason: fmt.Sprintf("missing required key: %s", key)}
		}
	}

	var b Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return Bundle{}, &SchemaValidationError{Reason: fmt.Sprintf("malformed field: %v", err)}
	}
	if err := validateBundle(b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func validateBundle(b Bundle) error {
	if len(b.ExecutiveSummary) < minSummaryLength {
		return &SchemaValidationError{Reason: fmt.Sprintf("executive_summary too short (min %d chars)", minSummaryLength)}
	}
	if len(b.OperatorSteps) == 0 {
		return &SchemaValidationError{Reason: "operator_steps cannot be empty"}
	}
	if len(b.FieldChecklist) == 0 {
		return &SchemaValidationError{Reason: "field_checklist cannot be empty"}
	}
	if len(b.RollbackSteps) == 0 {
		return &SchemaValidationError{Reason: "rollback_steps cannot be empty"}
	}
	if b.Confidence < 0 || b.Confidence > 1 {
		return &SchemaValidationError{Reason: "confidence must be in [0,1]"}
	}
	return nil
}
