package evaluation

import (
	"errors"
	"fmt"
)

// ErrMissingForecast is the sentinel for MissingForecastError.
var ErrMissingForecast = errors.New("forecast missing for item")

// MissingForecastError is returned when an item with realized data has no
// forecast row on the evaluation date.
type MissingForecastError struct {
	Date string
	Item string
}

func (e *MissingForecastError) Error() string {
	return fmt.Sprintf("%s: item %q on %s", ErrMissingForecast, e.Item, e.Date)
}

func (e *MissingForecastError) Is(target error) bool { return target == ErrMissingForecast }
