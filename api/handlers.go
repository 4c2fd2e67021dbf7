/*
handlers.go - HTTP API handlers for the time clock

PURPOSE:
  Exposes the time clock engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to timeclock.Service and
  timeclock.Session. No aggregation happens here; handlers only parse,
  call and format.

ENDPOINTS:
  Employees:
    GET    /api/employees                    List employees with status
    POST   /api/employees                    Create or update employee
    GET    /api/employees/{id}               Get employee
    POST   /api/employees/{id}/clock         Clock in or out (alternates)
    GET    /api/employees/{id}/hours         Minutes worked on ?date=
    GET    /api/employees/{id}/timecard      Day-by-day view of ?start=&end=
    DELETE /api/employees/{id}/entries       Delete all entries on ?date=

  Entries:
    GET    /api/entries                      Recent activity (?limit=)
    POST   /api/entries                      Admin-recorded entry
    PUT    /api/entries/{id}                 Edit entry time

  Periods:
    GET    /api/periods/current              Current pay period
    PUT    /api/periods/current              Select an explicit range
    POST   /api/periods/navigate             Previous / next period
    POST   /api/periods/reset                Back to the period containing today

  Reports:
    GET    /api/reports/payroll              Payroll report (saves snapshot)
    GET    /api/reports/snapshot             Saved snapshot for ?start=&end=
    GET    /api/dashboard                    Admin dashboard

  Settings:
    GET    /api/settings                     Company name
    PUT    /api/settings                     Update company name

  Demo:
    GET    /api/scenarios                    List demo scenarios
    GET    /api/scenarios/current            Loaded scenario
    POST   /api/scenarios/load               Reset and load a scenario
    POST   /api/admin/reset                  Clear all data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Wrong PIN
  - 404: Employee, entry or snapshot not found
  - 502: Store write failed (local state was rolled back)
  - 500: Internal errors

  Deleting a day that has no entries is a no-op and returns 204.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
)

// SettingsKey is the state key of the admin settings document.
const SettingsKey = "settings"

// defaultRecentLimit is how many entries GET /api/entries returns by default.
const defaultRecentLimit = 50

// maxRangeDays caps explicit date ranges. Views build one row per day and
// scan the log for each.
const maxRangeDays = 3 * 366

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that can wipe all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *timeclock.Service
	Session *timeclock.Session
	State   timeclock.StateStore
	Logger  *slog.Logger

	// DefaultCompany is used until an admin saves settings.
	DefaultCompany string

	// Track currently loaded demo scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(svc *timeclock.Service, session *timeclock.Session, state timeclock.StateStore, company string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Service:        svc,
		Session:        session,
		State:          state,
		Logger:         logger,
		DefaultCompany: company,
	}
}

func (h *Handler) today() calendar.Date {
	return calendar.DateOf(h.Service.Now(), h.Service.Location)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees with their clocked-in status.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Directory.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = h.toEmployeeDTO(e)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toEmployeeDTO(emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := timeclock.Employee{
		ID:         timeclock.EmployeeID(req.ID),
		Name:       req.Name,
		PIN:        req.PIN,
		Department: strings.TrimSpace(req.Department),
	}
	if err := h.Service.Directory.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, r, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toEmployeeDTO(emp))
}

// ClockEmployee records the employee's next event: out when they are
// clocked in, otherwise in. When the employee has a PIN it must match.
func (h *Handler) ClockEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if emp.PIN != "" && req.PIN != emp.PIN {
		h.Logger.WarnContext(r.Context(), "clock rejected: wrong pin", "employee_id", emp.ID)
		writeError(w, http.StatusForbidden, "Invalid PIN", nil)
		return
	}

	entry, err := h.Service.Clock(r.Context(), emp)
	if err != nil {
		h.writeDomainError(w, r, "Failed to record clock event", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(entry, h.Service.Location))
}

// GetHours returns minutes worked on ?date= (default today).
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	id := timeclock.EmployeeID(chi.URLParam(r, "id"))

	date := h.today()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		date = d
	}

	writeJSON(w, http.StatusOK, HoursResponse{
		EmployeeID: string(id),
		Date:       date,
		Worked:     toDuration(h.Service.DailyMinutes(id, date)),
		Working:    h.Service.IsWorking(id),
	})
}

// GetTimeCard returns the day-by-day view for ?start=&end= (default: the
// current period).
func (h *Handler) GetTimeCard(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	period, err := h.periodFromQuery(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid period", err)
		return
	}

	card := h.Service.TimeCard(emp.ID, period)
	writeJSON(w, http.StatusOK, toTimeCardDTO(card, h.Session.Calendar, h.Service.Location))
}

// DeleteDay removes all of the employee's entries on ?date=.
func (h *Handler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	id := timeclock.EmployeeID(chi.URLParam(r, "id"))

	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	n, err := h.Service.DeleteDay(r.Context(), id, date)
	if timeclock.IsNotFound(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.writeDomainError(w, r, "Failed to delete entries", err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteDayResponse{Deleted: n})
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (timeclock.Employee, bool) {
	id := timeclock.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Service.Directory.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return timeclock.Employee{}, false
	}
	return emp, true
}

func (h *Handler) toEmployeeDTO(e timeclock.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Department: e.Department,
		Working:    h.Service.IsWorking(e.ID),
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns the most recent entries, newest first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, toEntryDTOs(h.Service.Recent(limit), h.Service.Location))
}

// CreateEntry records an entry with explicit type, category and time.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	at, err := timeclock.ParseTimestamp(req.Time)
	if err != nil {
		h.writeDomainError(w, r, "Invalid time", err)
		return
	}

	entry, err := h.Service.AddEntry(r.Context(), timeclock.TimeEntry{
		EmployeeID: timeclock.EmployeeID(req.EmployeeID),
		Time:       at,
		Type:       timeclock.EntryType(req.Type),
		Category:   timeclock.Category(strings.ToUpper(req.Category)),
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to record entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(entry, h.Service.Location))
}

// EditEntry moves an entry to a new time.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	id := timeclock.EntryID(chi.URLParam(r, "id"))

	var req EditEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Service.Edit(r.Context(), id, req.Time)
	if timeclock.IsNotFound(err) {
		h.Logger.InfoContext(r.Context(), "edit target already gone", "entry_id", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.writeDomainError(w, r, "Failed to edit entry", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTO(entry, h.Service.Location))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// GetCurrentPeriod returns the period being viewed.
func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPeriodDTO(h.Session.Period(), h.Session.Calendar))
}

// NavigatePeriod moves the current period by delta periods.
func (h *Handler) NavigatePeriod(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Session.Navigate(r.Context(), req.Delta)
	if err != nil {
		h.writeDomainError(w, r, "Failed to change period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p, h.Session.Calendar))
}

// SetPeriod selects an explicit date range. The range is kept as given.
func (h *Handler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	var req SetPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := calendar.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := calendar.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	if err := checkRangeWidth(calendar.PayPeriod{Start: start, End: end}); err != nil {
		h.writeDomainError(w, r, "Failed to change period", err)
		return
	}

	p, err := h.Session.SetRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, r, "Failed to change period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p, h.Session.Calendar))
}

// ResetPeriod returns to the period containing today.
func (h *Handler) ResetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Session.Reset(r.Context(), h.today())
	if err != nil {
		h.writeDomainError(w, r, "Failed to change period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p, h.Session.Calendar))
}

// periodFromQuery reads ?start=&end=, falling back to the session period.
func (h *Handler) periodFromQuery(r *http.Request) (calendar.PayPeriod, error) {
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		return h.Session.Period(), nil
	}

	start, err := calendar.ParseDate(q.Get("start"))
	if err != nil {
		return calendar.PayPeriod{}, &timeclock.ValidationError{Field: "start", Value: q.Get("start"), Reason: "expected YYYY-MM-DD"}
	}
	end, err := calendar.ParseDate(q.Get("end"))
	if err != nil {
		return calendar.PayPeriod{}, &timeclock.ValidationError{Field: "end", Value: q.Get("end"), Reason: "expected YYYY-MM-DD"}
	}
	p, err := calendar.NewRange(start, end)
	if err != nil {
		return calendar.PayPeriod{}, &timeclock.ValidationError{Field: "period", Value: start.String() + ".." + end.String(), Reason: err.Error()}
	}
	if err := checkRangeWidth(p); err != nil {
		return calendar.PayPeriod{}, err
	}
	return p, nil
}

func checkRangeWidth(p calendar.PayPeriod) error {
	if p.Len() > maxRangeDays {
		return &timeclock.ValidationError{
			Field:  "period",
			Value:  p.String(),
			Reason: fmt.Sprintf("range spans %d days, at most %d allowed", p.Len(), maxRangeDays),
		}
	}
	return nil
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetPayrollReport builds the payroll report and saves the period's raw
// entries as a snapshot for printing.
func (h *Handler) GetPayrollReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid period", err)
		return
	}

	report, err := h.Service.Report(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build report", err)
		return
	}

	dto := toReportDTO(report, h.companyName(r.Context()), h.Session.Calendar)
	if _, err := h.Session.SaveSnapshot(r.Context(), period, h.Service.Entries()); err != nil {
		// The report itself is still valid.
		h.Logger.WarnContext(r.Context(), "report snapshot not saved", "period", period.String(), "error", err)
	} else {
		dto.SnapshotKey = timeclock.SnapshotKey(period)
	}

	writeJSON(w, http.StatusOK, dto)
}

// GetSnapshot returns the saved snapshot for ?start=&end=.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid period", err)
		return
	}

	snap, err := h.Session.LoadSnapshot(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load snapshot", err)
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "No snapshot for "+period.String(), nil)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GetDashboard returns the admin dashboard for the current period.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Service.Dashboard(r.Context(), h.Session.Period())
	if err != nil {
		h.writeDomainError(w, r, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(dash, h.Session.Calendar))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the admin settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettingsDTO{CompanyName: h.companyName(r.Context())})
}

// UpdateSettings saves the admin settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "companyName is required", nil)
		return
	}

	raw, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode settings", err)
		return
	}
	if err := h.State.Put(r.Context(), SettingsKey, raw); err != nil {
		h.writeDomainError(w, r, "Failed to save settings", &timeclock.PersistenceError{Op: "save settings", Err: err})
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) companyName(ctx context.Context) string {
	raw, ok, err := h.State.Get(ctx, SettingsKey)
	if err != nil {
		h.Logger.WarnContext(ctx, "failed to read settings", "error", err)
		return h.DefaultCompany
	}
	if !ok {
		return h.DefaultCompany
	}
	var s SettingsDTO
	if err := json.Unmarshal(raw, &s); err != nil || s.CompanyName == "" {
		return h.DefaultCompany
	}
	return s.CompanyName
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetDatabase clears all data when the store supports it and reloads the
// mirror.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	resetter, ok := h.Service.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return
	}
	if err := resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.Service.Load(r.Context()); err != nil {
		h.writeDomainError(w, r, "Failed to reload entries", err)
		return
	}
	if _, err := h.Session.Reset(r.Context(), h.today()); err != nil {
		h.writeDomainError(w, r, "Failed to reset period", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, timeclock.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, timeclock.ErrNotFound), errors.Is(err, timeclock.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, timeclock.ErrPersistence):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message,
			"error", err,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	writeError(w, status, message, err)
}
