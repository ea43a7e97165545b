package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the only accepted textual form of a date.
const Layout = "2006-01-02"

// ErrInvalidDateFormat is matched by every error returned from Parse.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// InvalidDateFormatError reports which input could not be parsed.
type InvalidDateFormatError struct {
	Field string // "start-date" or "end-date"
	Value string
	Err   error
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, ErrInvalidDateFormat)
}

func (e *InvalidDateFormatError) Is(target error) bool {
	return target == ErrInvalidDateFormat
}

func (e *InvalidDateFormatError) Unwrap() error {
	return e.Err
}

// Date is a calendar day with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a single YYYY-MM-DD string. Impossible dates such as
// 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Range is an inclusive span of calendar days. Start after End is allowed
// and simply contains nothing.
type Range struct {
	Start Date
	End   Date
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(startText, endText string) (Range, error) {
	start, err := ParseDate(startText)
	if err != nil {
		return Range{}, &InvalidDateFormatError{Field: "start-date", Value: startText, Err: err}
	}
	end, err := ParseDate(endText)
	if err != nil {
		return Range{}, &InvalidDateFormatError{Field: "end-date", Value: endText, Err: err}
	}
	return Range{Start: start, End: end}, nil
}

// Contains reports whether d lies within the range, both ends included.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ContainsTime reports whether t, viewed as a calendar day in loc, lies
// within the range.
func (r Range) ContainsTime(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return r.Contains(DateOf(t.In(loc)))
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
