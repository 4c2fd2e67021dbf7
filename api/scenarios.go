/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	clock data for demos and manual testing. Each scenario creates
	employees and two weeks of punches in the most recently closed pay
	period, then points the session at that period so the report and
	dashboard show it straight away.

AVAILABLE SCENARIOS:

	small-diner:      Four employees in two departments, regular shifts
	overtime-week:    One employee working 10 hour days (dashboard overtime)
	messy-punches:    Duplicate ins, orphan outs and an open shift
	mixed-categories: Vacation, holiday and sick time next to regular hours

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Reload the mirror
 3. Create employees
 4. Record punches through the service, like an admin would
 5. Select the seeded period

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-diner"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(s *seeder)
 3. Add it to 'loaders'

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
  - timeclock/service.go: AddEntry
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "small-diner",
		Name:        "Small Diner",
		Description: "Four employees in Kitchen and Front, regular shifts with lunch breaks",
	},
	{
		ID:          "overtime-week",
		Name:        "Overtime Week",
		Description: "One cook working 10 hour days; dashboard shows overtime, report stays REG",
	},
	{
		ID:          "messy-punches",
		Name:        "Messy Punches",
		Description: "Double clock-ins, stray clock-outs and a shift still open",
	},
	{
		ID:          "mixed-categories",
		Name:        "Mixed Categories",
		Description: "Vacation, holiday and sick entries alongside regular hours",
	},
}

var loaders = map[string]func(s *seeder){
	"small-diner":      loadSmallDinerScenario,
	"overtime-week":    loadOvertimeWeekScenario,
	"messy-punches":    loadMessyPunchesScenario,
	"mixed-categories": loadMixedCategoriesScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	period, err := h.loadScenario(r.Context(), load)
	if err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.Logger.InfoContext(r.Context(), "scenario loaded", "scenario", req.ScenarioID, "period", period.String())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"period":   toPeriodDTO(period, h.Session.Calendar),
	})
}

func (h *Handler) loadScenario(ctx context.Context, load func(s *seeder)) (calendar.PayPeriod, error) {
	resetter, ok := h.Service.Store.(Resetter)
	if !ok {
		return calendar.PayPeriod{}, fmt.Errorf("store does not support reset")
	}
	if err := resetter.Reset(ctx); err != nil {
		return calendar.PayPeriod{}, fmt.Errorf("failed to reset database: %w", err)
	}
	if err := h.Service.Load(ctx); err != nil {
		return calendar.PayPeriod{}, err
	}

	cal := h.Session.Calendar
	period := cal.Previous(cal.Current(h.today()))

	s := &seeder{ctx: ctx, svc: h.Service, start: period.Start, loc: h.Service.Location}
	load(s)
	if s.err != nil {
		return calendar.PayPeriod{}, s.err
	}

	return h.Session.SetRange(ctx, period.Start, period.End)
}

// =============================================================================
// SEEDER
// =============================================================================

// seeder records employees and punches relative to a period start. The
// first error stops all further writes.
type seeder struct {
	ctx   context.Context
	svc   *timeclock.Service
	start calendar.Date
	loc   *time.Location
	err   error
}

func (s *seeder) employee(id, name, department string) timeclock.EmployeeID {
	if s.err == nil {
		s.err = s.svc.Directory.SaveEmployee(s.ctx, timeclock.Employee{
			ID:         timeclock.EmployeeID(id),
			Name:       name,
			Department: department,
		})
	}
	return timeclock.EmployeeID(id)
}

// punch records one event on the given day of the period at a local "HH:MM".
func (s *seeder) punch(emp timeclock.EmployeeID, day int, clock string, typ timeclock.EntryType, cat timeclock.Category) {
	if s.err != nil {
		return
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		s.err = fmt.Errorf("bad clock %q: %w", clock, err)
		return
	}
	d := s.start.AddDays(day)
	at := time.Date(d.Year, d.Month, d.Day, hm.Hour(), hm.Minute(), 0, 0, s.loc)

	_, s.err = s.svc.AddEntry(s.ctx, timeclock.TimeEntry{
		EmployeeID: emp,
		Time:       at,
		Type:       typ,
		Category:   cat,
	})
}

func (s *seeder) shift(emp timeclock.EmployeeID, day int, from, to string, cat timeclock.Category) {
	s.punch(emp, day, from, timeclock.EntryIn, cat)
	s.punch(emp, day, to, timeclock.EntryOut, cat)
}

// workdays calls fn for the weekdays of a 14 day period.
func (s *seeder) workdays(fn func(day int)) {
	for day := 0; day < 14; day++ {
		switch s.start.AddDays(day).Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		fn(day)
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadSmallDinerScenario(s *seeder) {
	cook := s.employee("emp-cook", "Avery Cook", "Kitchen")
	prep := s.employee("emp-prep", "Blake Prep", "Kitchen")
	host := s.employee("emp-host", "Casey Host", "Front")
	server := s.employee("emp-server", "Drew Server", "Front")

	s.workdays(func(day int) {
		s.shift(cook, day, "07:00", "11:30", timeclock.CategoryRegular)
		s.shift(cook, day, "12:00", "15:30", timeclock.CategoryRegular)
		s.shift(prep, day, "06:00", "10:00", timeclock.CategoryRegular)
		s.shift(host, day, "11:00", "19:00", timeclock.CategoryRegular)
	})
	// Part-timer: three evenings a week
	for _, day := range []int{1, 3, 5, 8, 10, 12} {
		s.shift(server, day, "17:00", "22:15", timeclock.CategoryRegular)
	}
}

func loadOvertimeWeekScenario(s *seeder) {
	cook := s.employee("emp-cook", "Avery Cook", "Kitchen")

	s.workdays(func(day int) {
		s.shift(cook, day, "06:00", "16:00", timeclock.CategoryRegular)
	})
}

func loadMessyPunchesScenario(s *seeder) {
	cook := s.employee("emp-cook", "Avery Cook", "Kitchen")
	host := s.employee("emp-host", "Casey Host", "Front")

	// Pressed the button twice; the later in wins
	s.punch(cook, 0, "07:55", timeclock.EntryIn, timeclock.CategoryRegular)
	s.punch(cook, 0, "08:00", timeclock.EntryIn, timeclock.CategoryRegular)
	s.punch(cook, 0, "16:00", timeclock.EntryOut, timeclock.CategoryRegular)

	// Forgot to clock in; the stray out is ignored
	s.punch(cook, 1, "16:00", timeclock.EntryOut, timeclock.CategoryRegular)

	// Double out; only the first closes the shift
	s.shift(host, 2, "09:00", "17:00", timeclock.CategoryRegular)
	s.punch(host, 2, "17:05", timeclock.EntryOut, timeclock.CategoryRegular)

	// Forgot to clock out on the last day; counts nothing until fixed
	s.punch(host, 13, "09:00", timeclock.EntryIn, timeclock.CategoryRegular)
}

func loadMixedCategoriesScenario(s *seeder) {
	cook := s.employee("emp-cook", "Avery Cook", "Kitchen")
	host := s.employee("emp-host", "Casey Host", "Front")

	n := 0
	s.workdays(func(day int) {
		switch n {
		case 0:
			s.shift(cook, day, "08:00", "16:00", timeclock.CategoryHoliday)
			s.shift(host, day, "08:00", "16:00", timeclock.CategoryHoliday)
		case 1, 2:
			s.shift(cook, day, "08:00", "16:00", timeclock.CategoryVacation)
			s.shift(host, day, "08:00", "16:00", timeclock.CategoryRegular)
		case 3:
			s.shift(cook, day, "08:00", "16:00", timeclock.CategoryRegular)
			s.shift(host, day, "08:00", "12:00", timeclock.CategorySick)
		default:
			s.shift(cook, day, "08:00", "16:00", timeclock.CategoryRegular)
			s.shift(cook, day, "16:00", "17:00", timeclock.CategoryOvertime1)
			s.shift(host, day, "08:00", "16:00", timeclock.CategoryRegular)
		}
		n++
	})
}
