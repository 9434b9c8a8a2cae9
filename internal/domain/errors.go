package domain

import "fmt"

// FetchError reports an unreachable source or a non-success response.
type FetchError struct {
	Metric     Metric
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s from %s: unexpected status %d", e.Metric, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Metric, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DateParseError reports a date column label that is not in M/D/YY form.
type DateParseError struct {
	Label string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date label %q: %v", e.Label, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// ValueParseError reports a non-empty cell that is not a whole number.
type ValueParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("parse value %q at row %d, column %q: %v", e.Value, e.Row, e.Column, e.Err)
}

func (e *ValueParseError) Unwrap() error { return e.Err }

// NotFoundError is returned when a metric table is loaded before it was saved.
type NotFoundError struct {
	Metric Metric
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("metric table %q not found", e.Metric)
}

type UnknownCountryError struct {
	Country string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("unknown country %q", e.Country)
}
