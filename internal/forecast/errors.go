package forecast

import (
	"errors"
	"fmt"
)

// ErrEmptyExport is the sentinel for EmptyExportError.
var ErrEmptyExport = errors.New("forecast export has no data rows")

// EmptyExportError is returned when an export file contains no data rows.
type EmptyExportError struct {
	Key string
}

func (e *EmptyExportError) Error() string {
	if e.Key == "" {
		return ErrEmptyExport.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyExport, e.Key)
}

func (e *EmptyExportError) Is(target error) bool { return target == ErrEmptyExport }
