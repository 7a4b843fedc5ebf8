package audit

import (
	"errors"
	"fmt"
)

// ErrMissingField marks an expected key that is absent from a tool's output.
var ErrMissingField = errors.New("missing field")

// ReportExtractionError is returned when a tool ran successfully but its
// output does not contain what the report needs.
type ReportExtractionError struct {
	Source string // tool whose output was being read, e.g. "npm audit"
	Field  string // path of the value inside that output
	Err    error
}

func (e *ReportExtractionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Field, e.Err)
}

func (e *ReportExtractionError) Unwrap() error {
	return e.Err
}

func missing(source, field string) error {
	return &ReportExtractionError{Source: source, Field: field, Err: ErrMissingField}
}
