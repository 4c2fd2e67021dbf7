package timeclock

import (
	"time"

	"github.com/warp/timeclock/calendar"
)

// =============================================================================
// PAYROLL REPORT - Category columns per employee, grouped by department
// =============================================================================

// ReportRow is one employee line of the payroll report.
type ReportRow struct {
	Index      int // 1-based position inside the department
	Employee   Employee
	Categories CategoryMinutes
}

// Total is the employee's TOTAL column.
func (r ReportRow) Total() Minutes { return r.Categories.Total() }

// DepartmentGroup holds the rows of one department.
type DepartmentGroup struct {
	Name string
	Rows []ReportRow
}

// Report is the pay period report. All values are exact minutes.
type Report struct {
	Period      calendar.PayPeriod
	Departments []DepartmentGroup
	GrandTotals CategoryMinutes
	GrandTotal  Minutes
}

// DepartmentNames lists departments in report order.
func (r Report) DepartmentNames() []string {
	names := make([]string, len(r.Departments))
	for i, d := range r.Departments {
		names[i] = d.Name
	}
	return names
}

// BuildReport apportions every employee over the period. Departments appear
// in the order their first employee appears in employees; rows keep the
// directory order inside each department.
//
// GrandTotals[c] is the sum of row values for c and GrandTotal is the sum of
// row totals, so GrandTotals.Total() == GrandTotal.
func BuildReport(entries []TimeEntry, employees []Employee, period calendar.PayPeriod, loc *time.Location) Report {
	report := Report{
		Period:      period,
		GrandTotals: make(CategoryMinutes, len(Categories)),
	}

	groupIndex := make(map[string]int)
	for _, emp := range employees {
		i, ok := groupIndex[emp.Department]
		if !ok {
			i = len(report.Departments)
			groupIndex[emp.Department] = i
			report.Departments = append(report.Departments, DepartmentGroup{Name: emp.Department})
		}

		row := ReportRow{
			Index:      len(report.Departments[i].Rows) + 1,
			Employee:   emp,
			Categories: Apportion(entries, emp.ID, period, loc),
		}
		report.Departments[i].Rows = append(report.Departments[i].Rows, row)

		report.GrandTotals.AddAll(row.Categories)
		report.GrandTotal += row.Total()
	}

	return report
}

// EntriesInPeriod returns the entries whose local date falls in the period,
// newest first. Used for report snapshots.
func EntriesInPeriod(entries []TimeEntry, period calendar.PayPeriod, loc *time.Location) []TimeEntry {
	from, to := period.Bounds(loc)
	var result []TimeEntry
	for _, e := range entries {
		if !e.Time.Before(from) && e.Time.Before(to) {
			result = append(result, e)
		}
	}
	SortDescending(result)
	return result
}

// =============================================================================
// DASHBOARD - Quick glance per employee
// =============================================================================

// DashboardRow is one employee card on the admin dashboard.
type DashboardRow struct {
	Employee Employee
	Working  bool
	Today    Minutes
	Period   Minutes
	Split    OvertimeSplit
}

// Dashboard is the admin landing view for a period.
type Dashboard struct {
	Period calendar.PayPeriod
	Today  calendar.Date
	Rows   []DashboardRow
}

// BuildDashboard computes hours today, hours in the period and the
// threshold-based overtime split for each employee.
func BuildDashboard(entries []TimeEntry, employees []Employee, period calendar.PayPeriod, today calendar.Date, loc *time.Location, weeklyThreshold Minutes) Dashboard {
	dash := Dashboard{Period: period, Today: today}
	for _, emp := range employees {
		periodMinutes := PeriodMinutes(entries, emp.ID, period, loc)
		dash.Rows = append(dash.Rows, DashboardRow{
			Employee: emp,
			Working:  IsWorking(entries, emp.ID),
			Today:    DailyMinutes(entries, emp.ID, today, loc),
			Period:   periodMinutes,
			Split:    DashboardSplit(periodMinutes, period.Len(), weeklyThreshold),
		})
	}
	return dash
}
