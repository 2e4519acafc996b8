package forecast

import (
	"errors"
	"fmt"
)

// InsufficientDataError is returned when a unit has fewer qualifying readings
// in the lookback window than the minimum required. Callers typically skip
// the unit.
type InsufficientDataError struct {
	Unit string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need at least %d readings, have %d", e.Unit, e.Need, e.Have)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}
