/*
apportion.go - Splitting worked minutes across payroll categories

TWO SEPARATE COMPUTATIONS:
  1. Apportion (payroll report)
     Uses the category tag already stored on each entry. Entries of one
     category are paired among themselves and summed over the period.
     Nothing is inferred from the number of hours worked.

  2. DashboardSplit (quick-glance dashboard)
     Ignores tags. Total minutes up to a flat weekly threshold (scaled to
     the window length) are regular, the rest is overtime.

  The two can disagree for the same employee and period. They serve
  different screens and are kept apart; merging them changes reported
  totals.

ADDITIVE CONSISTENCY:
  CategoryMinutes.Total() is defined as the sum of the categories, so the
  TOTAL column always equals the sum of the other columns.
*/
package timeclock

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timeclock/calendar"
)

// =============================================================================
// CATEGORY MINUTES
// =============================================================================

// CategoryMinutes maps a category to minutes. Missing keys read as zero.
type CategoryMinutes map[Category]Minutes

// Get returns the minutes for c.
func (cm CategoryMinutes) Get(c Category) Minutes { return cm[c] }

// Total is the derived TOTAL category: the sum of every category.
func (cm CategoryMinutes) Total() Minutes {
	var total Minutes
	for _, c := range Categories {
		total += cm[c]
	}
	return total
}

// AddAll adds every category of other into cm.
func (cm CategoryMinutes) AddAll(other CategoryMinutes) {
	for _, c := range Categories {
		cm[c] += other[c]
	}
}

// Apportion sums the employee's minutes per category tag over the period.
func Apportion(entries []TimeEntry, employeeID EmployeeID, period calendar.PayPeriod, loc *time.Location) CategoryMinutes {
	byCategory := make(map[Category][]TimeEntry, len(Categories))
	for _, e := range entries {
		if e.EmployeeID != employeeID {
			continue
		}
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	result := make(CategoryMinutes, len(Categories))
	for _, c := range Categories {
		result[c] = PeriodMinutes(byCategory[c], employeeID, period, loc)
	}
	return result
}

// =============================================================================
// DASHBOARD SPLIT - Threshold-based, tag-agnostic
// =============================================================================

// DefaultWeeklyThreshold is 40 hours.
const DefaultWeeklyThreshold Minutes = 40 * 60

// OvertimeSplit is the regular/overtime view of a total.
type OvertimeSplit struct {
	Regular  Minutes
	Overtime Minutes
}

// Total returns Regular + Overtime.
func (s OvertimeSplit) Total() Minutes { return s.Regular + s.Overtime }

// WindowThreshold scales a weekly threshold to a window of windowDays days
// (40h/week is 80h over a 14-day period). Rounds down to whole minutes.
func WindowThreshold(weekly Minutes, windowDays int) Minutes {
	if windowDays <= 0 {
		return 0
	}
	return Minutes(decimal.NewFromInt(int64(weekly)).
		Mul(decimal.NewFromInt(int64(windowDays))).
		Div(decimal.NewFromInt(7)).
		Floor().
		IntPart())
}

// DashboardSplit splits total into regular and overtime using the weekly
// threshold scaled to windowDays.
func DashboardSplit(total Minutes, windowDays int, weeklyThreshold Minutes) OvertimeSplit {
	threshold := WindowThreshold(weeklyThreshold, windowDays)
	if total <= threshold {
		return OvertimeSplit{Regular: total}
	}
	return OvertimeSplit{Regular: threshold, Overtime: total - threshold}
}
