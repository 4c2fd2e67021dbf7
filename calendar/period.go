package calendar

import (
	"errors"
	"time"
)

// =============================================================================
// PAY PERIOD - Inclusive date range used to group hours for payroll
// =============================================================================

// ErrInvalidPeriod is returned when a range ends before it starts.
var ErrInvalidPeriod = errors.New("invalid period: end before start")

// PayPeriod is an inclusive range of dates [Start, End].
//
// Periods produced by a Calendar are always aligned to the anchor and exactly
// Calendar.Length days long. Periods built with NewRange may be anything the
// caller asked for; they are never realigned.
type PayPeriod struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewRange builds a period from explicit bounds without any grid alignment.
func NewRange(start, end Date) (PayPeriod, error) {
	if end.Before(start) {
		return PayPeriod{}, ErrInvalidPeriod
	}
	return PayPeriod{Start: start, End: end}, nil
}

// Contains returns true if d is within [Start, End].
func (p PayPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len returns the number of days in the period, both ends included.
func (p PayPeriod) Len() int {
	return p.End.DaysSince(p.Start) + 1
}

// Days returns every date in the period in order.
func (p PayPeriod) Days() []Date {
	days := make([]Date, 0, p.Len())
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Bounds returns the half-open instant window [Start 00:00, End+1 00:00) in loc.
func (p PayPeriod) Bounds(loc *time.Location) (from, to time.Time) {
	return p.Start.Midnight(loc), p.End.AddDays(1).Midnight(loc)
}

// String returns a string representation of the period.
func (p PayPeriod) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// CALENDAR - Anchor-aligned biweekly grid
// =============================================================================

// DefaultAnchor is the Wednesday that starts the first known pay period.
var DefaultAnchor = NewDate(2025, time.March, 26)

// DefaultLength is the number of days in a pay period.
const DefaultLength = 14

// Calendar tiles the timeline into Length-day periods starting at Anchor.
type Calendar struct {
	Anchor Date
	Length int
}

// New returns a calendar anchored at anchor with Length days per period.
// A non-positive length falls back to DefaultLength.
func New(anchor Date, length int) Calendar {
	if length <= 0 {
		length = DefaultLength
	}
	return Calendar{Anchor: anchor, Length: length}
}

// Default returns the 14-day calendar anchored at DefaultAnchor.
func Default() Calendar {
	return New(DefaultAnchor, DefaultLength)
}

// PeriodContaining returns the period that contains d.
// Dates before the anchor land in negative-index periods on the same grid.
func (c Calendar) PeriodContaining(d Date) PayPeriod {
	index := floorDiv(d.DaysSince(c.Anchor), c.length())
	start := c.Anchor.AddDays(index * c.length())
	return PayPeriod{Start: start, End: start.AddDays(c.length() - 1)}
}

// Current returns the period containing today.
func (c Calendar) Current(today Date) PayPeriod {
	return c.PeriodContaining(today)
}

// Shift moves both bounds by delta whole periods. Unaligned ranges stay
// unaligned; their width is preserved.
func (c Calendar) Shift(p PayPeriod, delta int) PayPeriod {
	days := delta * c.length()
	return PayPeriod{Start: p.Start.AddDays(days), End: p.End.AddDays(days)}
}

// Next returns the period after p.
func (c Calendar) Next(p PayPeriod) PayPeriod { return c.Shift(p, 1) }

// Previous returns the period before p.
func (c Calendar) Previous(p PayPeriod) PayPeriod { return c.Shift(p, -1) }

// IsAligned reports whether p is exactly one grid period.
func (c Calendar) IsAligned(p PayPeriod) bool {
	return c.PeriodContaining(p.Start) == p
}

// Periods returns count consecutive periods starting with the one containing from.
func (c Calendar) Periods(from Date, count int) []PayPeriod {
	periods := make([]PayPeriod, 0, count)
	p := c.PeriodContaining(from)
	for i := 0; i < count; i++ {
		periods = append(periods, p)
		p = c.Next(p)
	}
	return periods
}

func (c Calendar) length() int {
	if c.Length <= 0 {
		return DefaultLength
	}
	return c.Length
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
