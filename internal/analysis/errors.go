package analysis

import (
	"fmt"
	"strings"
)

// DegenerateInputError means a series has no usable spread: it is empty or
// every value is identical, so the outlier filter's Gaussian is undefined.
// Callers skip the field rather than abort.
type DegenerateInputError struct {
	Field string
	Count int
	Value float64
}

func (e *DegenerateInputError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("field %q has no values", e.Field)
	}
	return fmt.Sprintf("field %q has zero spread (%d values, all %g)", e.Field, e.Count, e.Value)
}

// FitError means the cubic trend fit could not be computed. The aggregate
// points remain valid without it.
type FitError struct {
	Points int
	Err    error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("cubic fit over %d points failed: %v", e.Points, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }

// EmptySelectionError means a field choice or keyword produced no plottable
// series.
type EmptySelectionError struct {
	Selection string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no plottable series for selection %q", e.Selection)
}

// Selection describes which fields to analyze. Exactly one of the forms is
// used, checked in the order All, Fields, Keyword.
type Selection struct {
	All     bool     `json:"all,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Keyword string   `json:"keyword,omitempty"`
}

func (s Selection) String() string {
	switch {
	case s.All:
		return "all"
	case len(s.Fields) > 0:
		return strings.Join(s.Fields, ",")
	default:
		return s.Keyword
	}
}
