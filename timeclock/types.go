/*
Package timeclock is the time accounting engine behind the employee time clock.

PURPOSE:
  Turns a stream of clock in/out events into worked minutes per day and per
  pay period, splits those minutes across payroll categories, and applies
  admin corrections to historical events. Every total is recomputed from
  the raw events; nothing is cached as a running delta.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: A single clock event (in or out) with its payroll category
  - EntryType: in / out
  - Category:  REG, OT1, OT2, VAC, HOL, SIC, OTH
  - Employee:  Directory record; the engine only correlates on ID

TOLERANCE:
  Histories are expected to alternate in/out, but nothing enforces it on
  write. The aggregator absorbs duplicate ins, orphan outs and open shifts
  (see aggregate.go) instead of rejecting them.

SEE ALSO:
  - aggregate.go: Pairing and summing
  - apportion.go: Category split and dashboard overtime split
  - editor.go:    Corrections
  - service.go:   Clock actions over the store and the local mirror
*/
package timeclock

import (
	"sort"
	"time"

	"github.com/warp/timeclock/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntryID string
type EmployeeID string

// =============================================================================
// ENTRY TYPE / CATEGORY
// =============================================================================

type EntryType string

const (
	EntryIn  EntryType = "in"
	EntryOut EntryType = "out"
)

// Valid reports whether t is in or out.
func (t EntryType) Valid() bool { return t == EntryIn || t == EntryOut }

// Category is the payroll bucket an entry's minutes are reported under.
type Category string

const (
	CategoryRegular   Category = "REG"
	CategoryOvertime1 Category = "OT1"
	CategoryOvertime2 Category = "OT2"
	CategoryVacation  Category = "VAC"
	CategoryHoliday   Category = "HOL"
	CategorySick      Category = "SIC"
	CategoryOther     Category = "OTH"
)

// Categories lists every category in report column order.
var Categories = []Category{
	CategoryRegular,
	CategoryOvertime1,
	CategoryOvertime2,
	CategoryVacation,
	CategoryHoliday,
	CategorySick,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// =============================================================================
// TIME ENTRY
// =============================================================================

// TimeEntry is one clock event. EmployeeName and Department are snapshots
// taken when the entry was created.
type TimeEntry struct {
	ID           EntryID    `json:"id"`
	EmployeeID   EmployeeID `json:"employeeId"`
	EmployeeName string     `json:"employeeName"`
	Department   string     `json:"department"`
	Time         time.Time  `json:"time"`
	Type         EntryType  `json:"type"`
	Category     Category   `json:"category"`
}

// Date returns the local calendar date of the entry.
func (e TimeEntry) Date(loc *time.Location) calendar.Date {
	return calendar.DateOf(e.Time, loc)
}

// SortAscending orders entries by time, oldest first. Ties keep input order.
func SortAscending(entries []TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
}

// SortDescending orders entries by time, newest first. Ties keep input order.
func SortDescending(entries []TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
}

// Latest returns the newest entry for the employee, if any.
func Latest(entries []TimeEntry, employeeID EmployeeID) (TimeEntry, bool) {
	var (
		latest TimeEntry
		found  bool
	)
	for _, e := range entries {
		if e.EmployeeID != employeeID {
			continue
		}
		if !found || !e.Time.Before(latest.Time) {
			latest = e
			found = true
		}
	}
	return latest, found
}

// IsWorking reports whether the employee's newest entry is an in.
func IsWorking(entries []TimeEntry, employeeID EmployeeID) bool {
	latest, ok := Latest(entries, employeeID)
	return ok && latest.Type == EntryIn
}

// NextType is the type a clock action should record for the employee.
func NextType(entries []TimeEntry, employeeID EmployeeID) EntryType {
	if IsWorking(entries, employeeID) {
		return EntryOut
	}
	return EntryIn
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is owned by the directory. PIN is a 4-digit shared secret used by
// the login screen, never by the engine.
type Employee struct {
	ID         EmployeeID `json:"id"`
	Name       string     `json:"name"`
	PIN        string     `json:"-"`
	Department string     `json:"department"`
}
