package aeronet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTruncatedSource means the source ended before the header line.
	ErrTruncatedSource = errors.New("source ends before the header line")

	// ErrFieldNotFound means a requested field is not in the header.
	ErrFieldNotFound = errors.New("field not found in header")
)

// SchemaError reports header markers required for temporal operations that
// could not be found.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("header has no field containing %s", strings.Join(e.Missing, " or "))
}

// ValueParseError reports a cell of the selected field that is not a number
// or a date/time token that does not match its fixed layout.
type ValueParseError struct {
	Field  string
	Record int
	Value  string
	Err    error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("field %q record %d: cannot parse %q: %v", e.Field, e.Record, e.Value, e.Err)
}

func (e *ValueParseError) Unwrap() error { return e.Err }
