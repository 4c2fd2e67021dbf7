/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Clock alternation and PIN check
- Daily hours and time cards
- Entry edits (validation, not found) and day deletion
- Period navigation and persistence
- Payroll report totals and snapshot
- Settings
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
	"github.com/warp/timeclock/timeclock/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// now is 2025-04-01 12:00 UTC, inside the 2025-03-26..2025-04-08 period.
var now = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	t       *testing.T
	store   *store.Memory
	service *timeclock.Service
	handler *Handler
	router  http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	require.NoError(t, mem.SaveEmployee(ctx, timeclock.Employee{ID: "e1", Name: "Avery", Department: "Kitchen"}))
	require.NoError(t, mem.SaveEmployee(ctx, timeclock.Employee{ID: "e2", Name: "Blake", Department: "Front", PIN: "4321"}))

	svc := timeclock.NewService(mem, mem, time.UTC, nil)
	svc.Now = func() time.Time { return now }
	require.NoError(t, svc.Load(ctx))

	session := timeclock.NewSession(calendar.Default(), mem, time.UTC, nil)
	_, err := session.Load(ctx, calendar.DateOf(now, time.UTC))
	require.NoError(t, err)

	h := NewHandler(svc, session, mem, "Acme Diner", nil)
	return &testServer{t: t, store: mem, service: svc, handler: h, router: NewRouter(h)}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) addEntry(emp, at, typ, cat string) EntryDTO {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/entries", CreateEntryRequest{EmployeeID: emp, Time: at, Type: typ, Category: cat})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[EntryDTO](ts.t, rec)
}

// =============================================================================
// EMPLOYEES AND CLOCKING
// =============================================================================

func TestListEmployees_HidesPIN(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/employees", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "4321")
	list := decode[[]EmployeeDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Avery", list[0].Name)
}

func TestCreateEmployee(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "e3", Name: "Casey", Department: "Front"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodGet, "/api/employees/e3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Casey", decode[EmployeeDTO](t, rec).Name)

	rec = ts.do(http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "", Name: "Nobody"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/employees/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClockEmployee_Alternates(t *testing.T) {
	ts := setupTestServer(t)

	// WHEN: Clocking twice
	first := ts.do(http.MethodPost, "/api/employees/e1/clock", nil)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, "in", decode[EntryDTO](t, first).Type)

	rec := ts.do(http.MethodGet, "/api/employees/e1", nil)
	assert.True(t, decode[EmployeeDTO](t, rec).Working)

	second := ts.do(http.MethodPost, "/api/employees/e1/clock", nil)
	require.Equal(t, http.StatusCreated, second.Code)

	// THEN: In then out, both REG
	out := decode[EntryDTO](t, second)
	assert.Equal(t, "out", out.Type)
	assert.Equal(t, "REG", out.Category)
	assert.Equal(t, "2025-04-01", out.Date.String())
}

func TestClockEmployee_PIN(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodPost, "/api/employees/e2/clock", ClockRequest{PIN: "0000"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/employees/e2/clock", ClockRequest{PIN: "4321"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// =============================================================================
// HOURS AND TIME CARD
// =============================================================================

func TestGetHours_TwoShifts(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T12:00:00Z", "out", "")
	ts.addEntry("e1", "2025-04-01T13:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T17:00:00Z", "out", "")

	rec := ts.do(http.MethodGet, "/api/employees/e1/hours?date=2025-04-01", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	hours := decode[HoursResponse](t, rec)
	assert.Equal(t, int64(480), hours.Worked.Minutes)
	assert.Equal(t, "8:00", hours.Worked.Display)
	assert.Equal(t, "8", hours.Worked.Hours.String())
	assert.False(t, hours.Working)

	rec = ts.do(http.MethodGet, "/api/employees/e1/hours?date=April", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTimeCard_DefaultsToCurrentPeriod(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T16:30:00Z", "out", "")

	rec := ts.do(http.MethodGet, "/api/employees/e1/timecard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[TimeCardDTO](t, rec)
	assert.Equal(t, "2025-03-26", card.Period.Start.String())
	assert.True(t, card.Period.Aligned)
	require.Len(t, card.Rows, 14)
	assert.Equal(t, "8:30", card.Total.Display)
	require.NotNil(t, card.Rows[6].FirstIn)
	assert.Equal(t, "08:00", *card.Rows[6].FirstIn)

	rec = ts.do(http.MethodGet, "/api/employees/e1/timecard?start=2025-04-10&end=2025-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRangeWidthIsCapped(t *testing.T) {
	ts := setupTestServer(t)

	// GIVEN: Ranges covering the whole calendar
	// THEN: Every view rejects them before building rows
	for _, path := range []string{
		"/api/employees/e1/timecard?start=0001-01-01&end=9999-12-31",
		"/api/reports/payroll?start=0001-01-01&end=9999-12-31",
		"/api/reports/snapshot?start=2020-01-01&end=2025-12-31",
	} {
		rec := ts.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "at most", path)
	}

	rec := ts.do(http.MethodPut, "/api/periods/current", SetPeriodRequest{Start: "0001-01-01", End: "9999-12-31"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "2025-03-26", ts.handler.Session.Period().Start.String())

	// A full year is still fine
	rec = ts.do(http.MethodGet, "/api/employees/e1/timecard?start=2025-01-01&end=2025-12-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[TimeCardDTO](t, rec).Rows, 365)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestEditEntry(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	out := ts.addEntry("e1", "2025-04-01T17:00:00Z", "out", "")

	t.Run("moves the entry", func(t *testing.T) {
		rec := ts.do(http.MethodPut, "/api/entries/"+out.ID, EditEntryRequest{Time: "2025-04-01T16:00:00Z"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, out.ID, decode[EntryDTO](t, rec).ID)

		hours := decode[HoursResponse](t, ts.do(http.MethodGet, "/api/employees/e1/hours?date=2025-04-01", nil))
		assert.Equal(t, int64(480), hours.Worked.Minutes)
	})

	t.Run("unparseable time is rejected", func(t *testing.T) {
		rec := ts.do(http.MethodPut, "/api/entries/"+out.ID, EditEntryRequest{Time: "4pm"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		hours := decode[HoursResponse](t, ts.do(http.MethodGet, "/api/employees/e1/hours?date=2025-04-01", nil))
		assert.Equal(t, int64(480), hours.Worked.Minutes)
	})

	t.Run("missing entry is a no-op", func(t *testing.T) {
		before := ts.service.Entries()

		rec := ts.do(http.MethodPut, "/api/entries/nope", EditEntryRequest{Time: "2025-04-01T16:00:00Z"})

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, before, ts.service.Entries())
	})
}

func TestCreateEntry_Validation(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodPost, "/api/entries", CreateEntryRequest{EmployeeID: "e1", Time: "2025-04-01T08:00:00Z", Type: "break"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/entries", CreateEntryRequest{EmployeeID: "e1", Time: "yesterday", Type: "in"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/entries", CreateEntryRequest{EmployeeID: "ghost", Time: "2025-04-01T08:00:00Z", Type: "in"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e := ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "vac")
	assert.Equal(t, "VAC", e.Category)
}

func TestListEntries_Limit(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T09:00:00Z", "out", "")
	ts.addEntry("e2", "2025-04-01T10:00:00Z", "in", "")

	rec := ts.do(http.MethodGet, "/api/entries?limit=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]EntryDTO](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "e2", entries[0].EmployeeID)

	rec = ts.do(http.MethodGet, "/api/entries?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDay(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T12:00:00Z", "out", "")
	ts.addEntry("e1", "2025-04-02T08:00:00Z", "in", "")

	rec := ts.do(http.MethodDelete, "/api/employees/e1/entries?date=2025-04-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[DeleteDayResponse](t, rec).Deleted)

	// Deleting again is a no-op
	rec = ts.do(http.MethodDelete, "/api/employees/e1/entries?date=2025-04-01", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/employees/e1/entries", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, ts.service.Entries(), 1)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriods_NavigateAndSet(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/periods/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-26", decode[PeriodDTO](t, rec).Start.String())

	rec = ts.do(http.MethodPost, "/api/periods/navigate", NavigateRequest{Delta: -1})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[PeriodDTO](t, rec)
	assert.Equal(t, "2025-03-12", p.Start.String())
	assert.Equal(t, "2025-03-25", p.End.String())

	rec = ts.do(http.MethodPut, "/api/periods/current", SetPeriodRequest{Start: "2025-04-01", End: "2025-04-10"})
	require.Equal(t, http.StatusOK, rec.Code)
	p = decode[PeriodDTO](t, rec)
	assert.False(t, p.Aligned)
	assert.Equal(t, 10, p.Days)

	raw, ok, err := ts.store.Get(context.Background(), timeclock.CurrentPeriodKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"start":"2025-04-01","end":"2025-04-10"}`, string(raw))

	rec = ts.do(http.MethodPut, "/api/periods/current", SetPeriodRequest{Start: "2025-04-10", End: "2025-04-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/periods/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-26", decode[PeriodDTO](t, rec).Start.String())
}

// =============================================================================
// REPORTS
// =============================================================================

func TestPayrollReport_TotalsAndSnapshot(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T08:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T16:00:00Z", "out", "")
	ts.addEntry("e2", "2025-04-02T08:00:00Z", "in", "HOL")
	ts.addEntry("e2", "2025-04-02T12:30:00Z", "out", "HOL")

	rec := ts.do(http.MethodGet, "/api/reports/payroll", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ReportDTO](t, rec)
	assert.Equal(t, "Acme Diner", report.Company)
	require.Len(t, report.Departments, 2)
	assert.Equal(t, "Kitchen", report.Departments[0].Name)
	assert.Equal(t, "8:00", report.GrandTotals[timeclock.CategoryRegular].Display)
	assert.Equal(t, "4:30", report.GrandTotals[timeclock.CategoryHoliday].Display)
	assert.Equal(t, "12:30", report.GrandTotal.Display)
	assert.Equal(t, "report_2025-03-26_2025-04-08", report.SnapshotKey)

	rec = ts.do(http.MethodGet, "/api/reports/snapshot?start=2025-03-26&end=2025-04-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[timeclock.ReportSnapshot](t, rec)
	assert.Len(t, snap.TimeEntries, 4)

	rec = ts.do(http.MethodGet, "/api/reports/snapshot?start=2025-01-01&end=2025-01-14", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry("e1", "2025-04-01T06:00:00Z", "in", "")
	ts.addEntry("e1", "2025-04-01T10:00:00Z", "out", "")
	ts.addEntry("e2", "2025-04-01T09:00:00Z", "in", "")

	rec := ts.do(http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[DashboardDTO](t, rec)
	assert.Equal(t, "2025-04-01", dash.Today.String())
	require.Len(t, dash.Rows, 2)
	assert.Equal(t, "4:00", dash.Rows[0].Today.Display)
	assert.Equal(t, "0:00", dash.Rows[0].Overtime.Display)
	assert.True(t, dash.Rows[1].Working)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Diner", decode[SettingsDTO](t, rec).CompanyName)

	rec = ts.do(http.MethodPut, "/api/settings", SettingsDTO{CompanyName: "  Night Owl Cafe "})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/settings", nil)
	assert.Equal(t, "Night Owl Cafe", decode[SettingsDTO](t, rec).CompanyName)

	rec = ts.do(http.MethodPut, "/api/settings", SettingsDTO{CompanyName: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&timeclock.ValidationError{Field: "time"}))
	assert.Equal(t, http.StatusNotFound, statusFor(&timeclock.NotFoundError{Kind: "time entry", ID: "x"}))
	assert.Equal(t, http.StatusNotFound, statusFor(timeclock.ErrEmployeeNotFound))
	assert.Equal(t, http.StatusBadGateway, statusFor(&timeclock.PersistenceError{Op: "update", Err: assert.AnError}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
