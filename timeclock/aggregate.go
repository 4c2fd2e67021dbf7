/*
aggregate.go - Pairs clock events into worked time

PAIRING POLICY:
  Entries for one employee inside the window are sorted oldest first and
  scanned with a single register holding the open "in" time:

    in   register empty -> open at this time
         register set   -> overwrite (latest in wins, earlier in is dropped)
    out  register set   -> add (out - in), clear register
         register empty -> ignore (never a negative contribution)
    end  register set   -> contributes zero (shift still in progress)

  This is a tolerant state machine on purpose: admins edit history freely
  and two browsers may clock the same employee, so malformed sequences are
  normal input, not errors.

WINDOW:
  [start 00:00, end+1 00:00) in the configured zone. Durations are summed
  exactly and truncated to whole minutes once, at the end.

SEE ALSO:
  - apportion.go: Runs the same pairing per category
  - timecard.go:  Per-day rows for one employee
*/
package timeclock

import (
	"time"

	"github.com/warp/timeclock/calendar"
)

// Shift is one closed in/out pair.
type Shift struct {
	In  time.Time
	Out time.Time
}

// Duration returns Out - In.
func (s Shift) Duration() time.Duration { return s.Out.Sub(s.In) }

// DailyMinutes returns the minutes worked by the employee on date.
func DailyMinutes(entries []TimeEntry, employeeID EmployeeID, date calendar.Date, loc *time.Location) Minutes {
	return RangeMinutes(entries, employeeID, date, date, loc)
}

// RangeMinutes returns the minutes worked by the employee between start and end,
// both days included.
func RangeMinutes(entries []TimeEntry, employeeID EmployeeID, start, end calendar.Date, loc *time.Location) Minutes {
	return MinutesOf(RangeDuration(entries, employeeID, start, end, loc))
}

// PeriodMinutes is RangeMinutes over a pay period.
func PeriodMinutes(entries []TimeEntry, employeeID EmployeeID, period calendar.PayPeriod, loc *time.Location) Minutes {
	return RangeMinutes(entries, employeeID, period.Start, period.End, loc)
}

// RangeDuration is RangeMinutes without the final truncation.
func RangeDuration(entries []TimeEntry, employeeID EmployeeID, start, end calendar.Date, loc *time.Location) time.Duration {
	var total time.Duration
	for _, s := range PairShifts(entries, employeeID, start, end, loc) {
		total += s.Duration()
	}
	return total
}

// PairShifts returns the closed shifts for the employee in the window,
// oldest first, following the pairing policy above.
func PairShifts(entries []TimeEntry, employeeID EmployeeID, start, end calendar.Date, loc *time.Location) []Shift {
	window := calendar.PayPeriod{Start: start, End: end}
	return pair(inWindow(entries, employeeID, window, loc))
}

// inWindow returns a sorted copy of the employee's entries inside the window.
func inWindow(entries []TimeEntry, employeeID EmployeeID, window calendar.PayPeriod, loc *time.Location) []TimeEntry {
	from, to := window.Bounds(loc)

	var relevant []TimeEntry
	for _, e := range entries {
		if e.EmployeeID != employeeID {
			continue
		}
		if e.Time.Before(from) || !e.Time.Before(to) {
			continue
		}
		relevant = append(relevant, e)
	}
	SortAscending(relevant)
	return relevant
}

// pair runs the register scan over already sorted entries.
func pair(sorted []TimeEntry) []Shift {
	var (
		shifts []Shift
		open   *time.Time
	)
	for _, e := range sorted {
		switch e.Type {
		case EntryIn:
			at := e.Time
			open = &at
		case EntryOut:
			if open == nil {
				continue
			}
			shifts = append(shifts, Shift{In: *open, Out: e.Time})
			open = nil
		}
	}
	return shifts
}
