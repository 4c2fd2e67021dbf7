package timeclock

import (
	"time"

	"github.com/warp/timeclock/calendar"
)

// TimeCardRow is one day of an employee's time card.
type TimeCardRow struct {
	Date     calendar.Date
	Weekday  time.Weekday
	FirstIn  *time.Time
	FirstOut *time.Time
	Minutes  Minutes
}

// TimeCard is an employee's day-by-day view of a period.
type TimeCard struct {
	EmployeeID EmployeeID
	Period     calendar.PayPeriod
	Rows       []TimeCardRow
	Total      Minutes
}

// BuildTimeCard lays out one row per day of the period. The total is the sum
// of the exact per-day minutes.
func BuildTimeCard(entries []TimeEntry, employeeID EmployeeID, period calendar.PayPeriod, loc *time.Location) TimeCard {
	card := TimeCard{EmployeeID: employeeID, Period: period}

	for _, day := range period.Days() {
		dayEntries := inWindow(entries, employeeID, calendar.PayPeriod{Start: day, End: day}, loc)

		row := TimeCardRow{
			Date:     day,
			Weekday:  day.Weekday(),
			FirstIn:  firstOf(dayEntries, EntryIn),
			FirstOut: firstOf(dayEntries, EntryOut),
			Minutes:  DailyMinutes(entries, employeeID, day, loc),
		}
		card.Rows = append(card.Rows, row)
		card.Total += row.Minutes
	}
	return card
}

func firstOf(sorted []TimeEntry, t EntryType) *time.Time {
	for _, e := range sorted {
		if e.Type == t {
			at := e.Time
			return &at
		}
	}
	return nil
}
