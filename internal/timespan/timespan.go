package timespan

import (
	"fmt"
	"time"
)

// DateLayout is the date format used by both corpus files and metadata
const DateLayout = "2006-01-02"

// ParseError reports a date value that does not follow DateLayout
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ParseError{Value: value, Err: err}
	}
	return t, nil
}

// Span is a closed date interval. A nil bound is unbounded on that side.
type Span struct {
	From *time.Time
	To   *time.Time
}

// ParseSpan builds a Span from optional from/to attribute values.
// An empty string means the bound is missing.
func ParseSpan(from, to string) (Span, error) {
	var span Span
	if from != "" {
		t, err := ParseDate(from)
		if err != nil {
			return Span{}, err
		}
		span.From = &t
	}
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return Span{}, err
		}
		span.To = &t
	}
	return span, nil
}

// Contains reports whether date lies within the span (bounds inclusive)
func (s Span) Contains(date time.Time) bool {
	if s.From != nil && date.Before(*s.From) {
		return false
	}
	if s.To != nil && date.After(*s.To) {
		return false
	}
	return true
}

func (s Span) String() string {
	from, to := "-inf", "+inf"
	if s.From != nil {
		from = s.From.Format(DateLayout)
	}
	if s.To != nil {
		to = s.To.Format(DateLayout)
	}
	return "[" + from + ", " + to + "]"
}
