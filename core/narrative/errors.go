package narrative

import "fmt"

// BackendError wraps a failed backend call, including timeouts. Always
// recovered internally via retry then fallback.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("narrative backend: %v", e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }

// SchemaValidationError marks a backend response that does not match the
// bundle schema. Treated identically to a backend failure for retries.
type SchemaValidationError struct {
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("narrative schema validation: %s", e.Reason)
}
