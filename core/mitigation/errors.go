package mitigation

import (
	"errors"
	"fmt"
)

// NotOverloadedError is returned when the predicted peak is already within
// the safe operating limit. An expected outcome for low-risk units, not a
// system failure.
type NotOverloadedError struct {
	Unit string
}

func (e *NotOverloadedError) Error() string {
	return fmt.Sprintf("transformer %s is not overloaded", e.Unit)
}

// NoNeighborsError is returned when the unit has no active outgoing links.
type NoNeighborsError struct {
	Unit string
}

func (e *NoNeighborsError) Error() string {
	return fmt.Sprintf("transformer %s has no topology neighbors for load transfer", e.Unit)
}

// NoViablePlanError is returned when every candidate falls below the minimum
// useful transfer.
type NoViablePlanError struct {
	Unit string
}

func (e *NoViablePlanError) Error() string {
	return fmt.Sprintf("no viable mitigation plans for %s (neighbors at capacity)", e.Unit)
}

// IsExpectedOutcome reports whether err is one of the simulator's expected
// non-failure outcomes (not overloaded, isolated, or no viable transfer).
func IsExpectedOutcome(err error) bool {
	var no *NotOverloadedError
	var nn *NoNeighborsError
	var nv *NoViablePlanError
	return errors.As(err, &no) || errors.As(err, &nn) || errors.As(err, &nv)
}
