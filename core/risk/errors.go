package risk

import (
	"errors"
	"fmt"
)

// EmptyForecastError is returned when a forecast carries no predictions.
type EmptyForecastError struct {
	Unit string
}

func (e *EmptyForecastError) Error() string {
	return fmt.Sprintf("forecast for %s has no predictions", e.Unit)
}

// IsEmptyForecast reports whether err is an EmptyForecastError.
func IsEmptyForecast(err error) bool {
	var ee *EmptyForecastError
	return errors.As(err, &ee)
}
