/*
service.go - Clock actions and read views over the local mirror

PURPOSE:
  Service glues the pure engine to the stores. It keeps the Mirror in step
  with the EntryStore and exposes the views the UI needs (daily hours,
  period hours, time card, payroll report, dashboard), all computed from
  the mirror on every call.

READ-YOUR-WRITES:
  New entries are added to the mirror as soon as the store acknowledges
  them. Edits and deletes go through Editor, which updates the mirror
  optimistically and rolls back on store failure.

EXAMPLE:
  svc := timeclock.NewService(store, store, loc, logger)
  if err := svc.Load(ctx); err != nil { ... }
  entry, err := svc.Clock(ctx, employee)          // in, then out, then in...
  minutes := svc.DailyMinutes(employee.ID, today) // reflects the clock above
*/
package timeclock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/timeclock/calendar"
)

// Service runs clock actions and computes views.
type Service struct {
	Store     EntryStore
	Directory EmployeeDirectory
	Location  *time.Location
	Logger    *slog.Logger

	// WeeklyThreshold drives the dashboard overtime split.
	WeeklyThreshold Minutes

	// Now is the clock used by Clock. Tests replace it.
	Now func() time.Time

	mirror *Mirror
	editor *Editor
}

// NewService wires a service with an empty mirror. Call Load to fill it.
func NewService(store EntryStore, directory EmployeeDirectory, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	mirror := NewMirror()
	return &Service{
		Store:           store,
		Directory:       directory,
		Location:        loc,
		Logger:          logger,
		WeeklyThreshold: DefaultWeeklyThreshold,
		Now:             time.Now,
		mirror:          mirror,
		editor: &Editor{
			Store:    store,
			Mirror:   mirror,
			Location: loc,
			Logger:   logger.With("component", "editor"),
		},
	}
}

// Editor returns the editor sharing this service's mirror.
func (s *Service) Editor() *Editor { return s.editor }

// Load replaces the mirror with the store's content.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.Store.List(ctx)
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}
	s.mirror.Reset(entries)
	s.Logger.InfoContext(ctx, "entries loaded", "count", len(entries))
	return nil
}

// Entries returns every known entry, oldest first.
func (s *Service) Entries() []TimeEntry { return s.mirror.Snapshot() }

// Recent returns the n newest entries, newest first.
func (s *Service) Recent(n int) []TimeEntry {
	entries := s.mirror.Snapshot()
	SortDescending(entries)
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// =============================================================================
// CLOCK ACTIONS
// =============================================================================

// Clock records the employee's next event at the current time: out when the
// latest entry is an in, otherwise in. Category is REG.
func (s *Service) Clock(ctx context.Context, emp Employee) (TimeEntry, error) {
	return s.ClockAt(ctx, emp, s.Now())
}

// ClockAt is Clock at an explicit instant.
func (s *Service) ClockAt(ctx context.Context, emp Employee, at time.Time) (TimeEntry, error) {
	entry := TimeEntry{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Department:   emp.Department,
		Time:         at.UTC(),
		Type:         NextType(s.mirror.Snapshot(), emp.ID),
		Category:     CategoryRegular,
	}
	return s.append(ctx, entry)
}

// AddEntry records an entry on behalf of an employee with an explicit type
// and category. Employee name and department are filled from the directory
// when missing.
func (s *Service) AddEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	if !entry.Type.Valid() {
		return TimeEntry{}, &ValidationError{Field: "type", Value: string(entry.Type), Reason: "must be in or out"}
	}
	if entry.Category == "" {
		entry.Category = CategoryRegular
	}
	if !entry.Category.Valid() {
		return TimeEntry{}, &ValidationError{Field: "category", Value: string(entry.Category), Reason: "unknown category"}
	}
	if entry.Time.IsZero() {
		return TimeEntry{}, &ValidationError{Field: "time", Value: "", Reason: "required"}
	}
	if entry.EmployeeName == "" && s.Directory != nil {
		emp, err := s.Directory.GetEmployee(ctx, entry.EmployeeID)
		if err != nil {
			return TimeEntry{}, fmt.Errorf("failed to look up employee %s: %w", entry.EmployeeID, err)
		}
		entry.EmployeeName = emp.Name
		entry.Department = emp.Department
	}
	entry.ID = ""
	entry.Time = entry.Time.UTC()
	return s.append(ctx, entry)
}

func (s *Service) append(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	stored, err := s.Store.Append(ctx, entry)
	if err != nil {
		s.Logger.ErrorContext(ctx, "append failed", "employee_id", entry.EmployeeID, "error", err)
		return TimeEntry{}, &PersistenceError{Op: "append", Err: err}
	}
	s.mirror.Put(stored)
	s.Logger.InfoContext(ctx, "entry recorded",
		"entry_id", stored.ID,
		"employee_id", stored.EmployeeID,
		"type", stored.Type,
		"category", stored.Category,
	)
	return stored, nil
}

// Edit delegates to the editor.
func (s *Service) Edit(ctx context.Context, id EntryID, newTime string) (TimeEntry, error) {
	return s.editor.Edit(ctx, id, newTime)
}

// DeleteDay delegates to the editor.
func (s *Service) DeleteDay(ctx context.Context, employeeID EmployeeID, date calendar.Date) (int, error) {
	return s.editor.Delete(ctx, employeeID, date)
}

// =============================================================================
// VIEWS
// =============================================================================

// IsWorking reports whether the employee is currently clocked in.
func (s *Service) IsWorking(employeeID EmployeeID) bool {
	return IsWorking(s.mirror.Snapshot(), employeeID)
}

// DailyMinutes returns minutes worked on date.
func (s *Service) DailyMinutes(employeeID EmployeeID, date calendar.Date) Minutes {
	return DailyMinutes(s.mirror.Snapshot(), employeeID, date, s.Location)
}

// RangeMinutes returns minutes worked between start and end inclusive.
func (s *Service) RangeMinutes(employeeID EmployeeID, start, end calendar.Date) Minutes {
	return RangeMinutes(s.mirror.Snapshot(), employeeID, start, end, s.Location)
}

// Apportion returns the category split for the employee over the period.
func (s *Service) Apportion(employeeID EmployeeID, period calendar.PayPeriod) CategoryMinutes {
	return Apportion(s.mirror.Snapshot(), employeeID, period, s.Location)
}

// TimeCard returns the employee's day-by-day view of the period.
func (s *Service) TimeCard(employeeID EmployeeID, period calendar.PayPeriod) TimeCard {
	return BuildTimeCard(s.mirror.Snapshot(), employeeID, period, s.Location)
}

// Report builds the payroll report for every employee in the directory.
func (s *Service) Report(ctx context.Context, period calendar.PayPeriod) (Report, error) {
	employees, err := s.Directory.ListEmployees(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list employees: %w", err)
	}
	return BuildReport(s.mirror.Snapshot(), employees, period, s.Location), nil
}

// Dashboard builds the admin dashboard for the period.
func (s *Service) Dashboard(ctx context.Context, period calendar.PayPeriod) (Dashboard, error) {
	employees, err := s.Directory.ListEmployees(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list employees: %w", err)
	}
	today := calendar.DateOf(s.Now(), s.Location)
	return BuildDashboard(s.mirror.Snapshot(), employees, period, today, s.Location, s.WeeklyThreshold), nil
}

// EntriesInPeriod returns the period's entries, newest first.
func (s *Service) EntriesInPeriod(period calendar.PayPeriod) []TimeEntry {
	return EntriesInPeriod(s.mirror.Snapshot(), period, s.Location)
}
