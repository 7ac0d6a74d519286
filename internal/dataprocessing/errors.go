package dataprocessing

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is.
var (
	ErrMalformedRow   = errors.New("malformed feed row")
	ErrNoData         = errors.New("feed contains no data rows")
	ErrInvalidHorizon = errors.New("invalid forecast horizon")
)

// MalformedRowError reports a feed row that could not be parsed.
type MalformedRowError struct {
	Line   int
	Column int
	Value  string
	Reason string
	Err    error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	if e.Value != "" {
		msg = fmt.Sprintf("%s (column %d, value %q)", msg, e.Column, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

func (e *MalformedRowError) Unwrap() error { return e.Err }

// NoDataError is returned when a feed has a header but no data rows.
type NoDataError struct {
	Source string
}

func (e *NoDataError) Error() string {
	if e.Source == "" {
		return ErrNoData.Error()
	}
	return fmt.Sprintf("%s: %s", e.Source, ErrNoData)
}

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// InvalidHorizonError is returned when the template's forecast horizon is not positive.
type InvalidHorizonError struct {
	Horizon int
}

func (e *InvalidHorizonError) Error() string {
	return fmt.Sprintf("%s: %d (must be > 0)", ErrInvalidHorizon, e.Horizon)
}

func (e *InvalidHorizonError) Is(target error) bool { return target == ErrInvalidHorizon }
