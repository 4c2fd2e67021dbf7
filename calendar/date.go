/*
Package calendar maps instants and calendar dates onto fixed-length pay periods.

PURPOSE:
  Payroll totals must partition time: every day belongs to exactly one
  pay period, and consecutive periods tile the timeline with no gaps and
  no overlaps. This package owns that arithmetic and nothing else.

KEY CONCEPTS:
  - Date:      A civil calendar date with no time-of-day and no zone
  - PayPeriod: An inclusive [Start, End] range of dates
  - Calendar:  Anchor date + period length; answers "which period?"

ZONES:
  A Date only becomes an instant when paired with a *time.Location
  (Midnight, Bounds). The engine runs against a single configured zone.

SEE ALSO:
  - period.go: PayPeriod and Calendar
  - timeclock/aggregate.go: Uses period bounds to window clock events
*/
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// Date is a civil date. The zero value is 0000-00-00 and reports IsZero.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a normalized date (e.g. March 32 becomes April 1).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the date of instant t as seen in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now(), loc)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

const secondsPerDay = 24 * 60 * 60

// utc is the date at UTC midnight, used for zone-free day arithmetic.
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Midnight returns the first instant of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return NewDate(d.Year, d.Month, d.Day+n) }

// DaysSince returns d - other in whole days. Negative when d is earlier.
// Works on Unix seconds since time.Duration overflows past about 292 years.
func (d Date) DaysSince(other Date) int {
	return int((d.utc().Unix() - other.utc().Unix()) / secondsPerDay)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.utc().Before(other.utc()) }
func (d Date) After(other Date) bool         { return d.utc().After(other.utc()) }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Properties
func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }

func (d Date) String() string {
	return d.utc().Format(DateLayout)
}

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes YYYY-MM-DD.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
