/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Aggregates leave the
  engine as exact minutes and are only formatted here, so every duration
  carries the raw minutes next to its "H:MM" display string and decimal
  hours.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

TYPES:
  Employees:  EmployeeDTO, CreateEmployeeRequest, HoursResponse
  Entries:    EntryDTO, CreateEntryRequest, EditEntryRequest, DeleteDayResponse
  Periods:    PeriodDTO, NavigateRequest, SetPeriodRequest
  Views:      TimeCardDTO, ReportDTO, DashboardDTO
  Settings:   SettingsDTO

SEE ALSO:
  - handlers.go: Uses these types
  - timeclock/minutes.go: Minutes formatting
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
)

// =============================================================================
// DURATIONS
// =============================================================================

// DurationDTO is a worked-time amount.
type DurationDTO struct {
	Minutes int64           `json:"minutes"`
	Display string          `json:"display"` // H:MM
	Hours   decimal.Decimal `json:"hours"`
}

func toDuration(m timeclock.Minutes) DurationDTO {
	return DurationDTO{Minutes: int64(m), Display: m.String(), Hours: m.Hours()}
}

func toCategoryDurations(cm timeclock.CategoryMinutes) map[timeclock.Category]DurationDTO {
	result := make(map[timeclock.Category]DurationDTO, len(timeclock.Categories))
	for _, c := range timeclock.Categories {
		result[c] = toDuration(cm.Get(c))
	}
	return result
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses. The PIN never leaves
// the server.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Working    bool   `json:"working"`
}

// CreateEmployeeRequest is the request body for creating or updating an
// employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PIN        string `json:"pin"`
	Department string `json:"department"`
}

// ClockRequest optionally carries the employee PIN.
type ClockRequest struct {
	PIN string `json:"pin"`
}

// HoursResponse is the worked time for one employee on one date.
type HoursResponse struct {
	EmployeeID string        `json:"employeeId"`
	Date       calendar.Date `json:"date"`
	Worked     DurationDTO   `json:"worked"`
	Working    bool          `json:"working"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a clock event.
type EntryDTO struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	EmployeeName string        `json:"employeeName"`
	Department   string        `json:"department"`
	Time         string        `json:"time"` // RFC 3339, UTC
	Date         calendar.Date `json:"date"` // local calendar date
	Type         string        `json:"type"`
	Category     string        `json:"category"`
}

func toEntryDTO(e timeclock.TimeEntry, loc *time.Location) EntryDTO {
	return EntryDTO{
		ID:           string(e.ID),
		EmployeeID:   string(e.EmployeeID),
		EmployeeName: e.EmployeeName,
		Department:   e.Department,
		Time:         e.Time.UTC().Format(time.RFC3339Nano),
		Date:         e.Date(loc),
		Type:         string(e.Type),
		Category:     string(e.Category),
	}
}

func toEntryDTOs(entries []timeclock.TimeEntry, loc *time.Location) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e, loc)
	}
	return dtos
}

// CreateEntryRequest is the body for an admin-recorded entry.
type CreateEntryRequest struct {
	EmployeeID string `json:"employeeId"`
	Time       string `json:"time"`
	Type       string `json:"type"`
	Category   string `json:"category"`
}

// EditEntryRequest moves an entry to a new instant.
type EditEntryRequest struct {
	Time string `json:"time"`
}

// DeleteDayResponse reports how many entries were removed.
type DeleteDayResponse struct {
	Deleted int `json:"deleted"`
}

// =============================================================================
// PERIODS
// =============================================================================

// PeriodDTO represents a pay period.
type PeriodDTO struct {
	Start   calendar.Date `json:"start"`
	End     calendar.Date `json:"end"`
	Days    int           `json:"days"`
	Aligned bool          `json:"aligned"`
	Label   string        `json:"label"`
}

func toPeriodDTO(p calendar.PayPeriod, cal calendar.Calendar) PeriodDTO {
	return PeriodDTO{
		Start:   p.Start,
		End:     p.End,
		Days:    p.Len(),
		Aligned: cal.IsAligned(p),
		Label:   p.String(),
	}
}

// NavigateRequest moves the current period by Delta periods.
type NavigateRequest struct {
	Delta int `json:"delta"`
}

// SetPeriodRequest selects an explicit range.
type SetPeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// =============================================================================
// VIEWS
// =============================================================================

// TimeCardRowDTO is one day of a time card.
type TimeCardRowDTO struct {
	Date     calendar.Date `json:"date"`
	Weekday  string        `json:"weekday"`
	FirstIn  *string       `json:"firstIn,omitempty"`
	FirstOut *string       `json:"firstOut,omitempty"`
	Worked   DurationDTO   `json:"worked"`
}

// TimeCardDTO is the day-by-day view of one employee's period.
type TimeCardDTO struct {
	EmployeeID string           `json:"employeeId"`
	Period     PeriodDTO        `json:"period"`
	Rows       []TimeCardRowDTO `json:"rows"`
	Total      DurationDTO      `json:"total"`
}

func toTimeCardDTO(card timeclock.TimeCard, cal calendar.Calendar, loc *time.Location) TimeCardDTO {
	dto := TimeCardDTO{
		EmployeeID: string(card.EmployeeID),
		Period:     toPeriodDTO(card.Period, cal),
		Rows:       make([]TimeCardRowDTO, len(card.Rows)),
		Total:      toDuration(card.Total),
	}
	for i, row := range card.Rows {
		dto.Rows[i] = TimeCardRowDTO{
			Date:     row.Date,
			Weekday:  row.Weekday.String(),
			FirstIn:  clockTime(row.FirstIn, loc),
			FirstOut: clockTime(row.FirstOut, loc),
			Worked:   toDuration(row.Minutes),
		}
	}
	return dto
}

func clockTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("15:04")
	return &s
}

// ReportRowDTO is one employee line of the payroll report.
type ReportRowDTO struct {
	Index      int                                `json:"index"`
	EmployeeID string                             `json:"employeeId"`
	Name       string                             `json:"name"`
	Categories map[timeclock.Category]DurationDTO `json:"categories"`
	Total      DurationDTO                        `json:"total"`
}

// DepartmentDTO groups report rows.
type DepartmentDTO struct {
	Name string         `json:"name"`
	Rows []ReportRowDTO `json:"rows"`
}

// ReportDTO is the payroll report.
type ReportDTO struct {
	Company     string                             `json:"company"`
	Period      PeriodDTO                          `json:"period"`
	Departments []DepartmentDTO                    `json:"departments"`
	GrandTotals map[timeclock.Category]DurationDTO `json:"grandTotals"`
	GrandTotal  DurationDTO                        `json:"grandTotal"`
	SnapshotKey string                             `json:"snapshotKey,omitempty"`
}

func toReportDTO(report timeclock.Report, company string, cal calendar.Calendar) ReportDTO {
	dto := ReportDTO{
		Company:     company,
		Period:      toPeriodDTO(report.Period, cal),
		Departments: make([]DepartmentDTO, len(report.Departments)),
		GrandTotals: toCategoryDurations(report.GrandTotals),
		GrandTotal:  toDuration(report.GrandTotal),
	}
	for i, dept := range report.Departments {
		rows := make([]ReportRowDTO, len(dept.Rows))
		for j, row := range dept.Rows {
			rows[j] = ReportRowDTO{
				Index:      row.Index,
				EmployeeID: string(row.Employee.ID),
				Name:       row.Employee.Name,
				Categories: toCategoryDurations(row.Categories),
				Total:      toDuration(row.Total()),
			}
		}
		dto.Departments[i] = DepartmentDTO{Name: dept.Name, Rows: rows}
	}
	return dto
}

// DashboardRowDTO is one employee card on the dashboard.
type DashboardRowDTO struct {
	EmployeeID string      `json:"employeeId"`
	Name       string      `json:"name"`
	Department string      `json:"department"`
	Working    bool        `json:"working"`
	Today      DurationDTO `json:"today"`
	Period     DurationDTO `json:"period"`
	Regular    DurationDTO `json:"regular"`
	Overtime   DurationDTO `json:"overtime"`
}

// DashboardDTO is the admin landing view.
type DashboardDTO struct {
	Period PeriodDTO         `json:"period"`
	Today  calendar.Date     `json:"today"`
	Rows   []DashboardRowDTO `json:"rows"`
}

func toDashboardDTO(dash timeclock.Dashboard, cal calendar.Calendar) DashboardDTO {
	dto := DashboardDTO{
		Period: toPeriodDTO(dash.Period, cal),
		Today:  dash.Today,
		Rows:   make([]DashboardRowDTO, len(dash.Rows)),
	}
	for i, row := range dash.Rows {
		dto.Rows[i] = DashboardRowDTO{
			EmployeeID: string(row.Employee.ID),
			Name:       row.Employee.Name,
			Department: row.Employee.Department,
			Working:    row.Working,
			Today:      toDuration(row.Today),
			Period:     toDuration(row.Period),
			Regular:    toDuration(row.Split.Regular),
			Overtime:   toDuration(row.Split.Overtime),
		}
	}
	return dto
}

// =============================================================================
// SETTINGS / ERRORS
// =============================================================================

// SettingsDTO holds admin-editable settings.
type SettingsDTO struct {
	CompanyName string `json:"companyName"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
