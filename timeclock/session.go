package timeclock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/timeclock/calendar"
)

// =============================================================================
// SESSION - Current pay period for one admin session
// =============================================================================

// CurrentPeriodKey is the state key of the last viewed period.
const CurrentPeriodKey = "currentPayPeriod"

// SnapshotKey is the state key of the report snapshot for a period.
func SnapshotKey(p calendar.PayPeriod) string {
	return fmt.Sprintf("report_%s_%s", p.Start, p.End)
}

// ReportSnapshot is the offline/print copy of a period's raw entries.
type ReportSnapshot struct {
	StartDate   calendar.Date `json:"startDate"`
	EndDate     calendar.Date `json:"endDate"`
	TimeEntries []TimeEntry   `json:"timeEntries"`
}

// Session holds the period being viewed and persists it through State.
// In-memory state only changes after the save succeeds.
type Session struct {
	Calendar calendar.Calendar
	State    StateStore
	Location *time.Location
	Logger   *slog.Logger

	mu     sync.RWMutex
	period calendar.PayPeriod
}

func NewSession(cal calendar.Calendar, state StateStore, loc *time.Location, logger *slog.Logger) *Session {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{Calendar: cal, State: state, Location: loc, Logger: logger}
}

// Period returns the period being viewed.
func (s *Session) Period() calendar.PayPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.period
}

// Load restores the saved period, or falls back to the period containing
// today. A saved range that is off the grid is kept as is.
func (s *Session) Load(ctx context.Context, today calendar.Date) (calendar.PayPeriod, error) {
	raw, ok, err := s.State.Get(ctx, CurrentPeriodKey)
	if err != nil {
		return calendar.PayPeriod{}, &PersistenceError{Op: "load period", Err: err}
	}

	period := s.Calendar.Current(today)
	if ok {
		var saved calendar.PayPeriod
		if err := json.Unmarshal(raw, &saved); err != nil || saved.Start.IsZero() || saved.End.Before(saved.Start) {
			s.Logger.WarnContext(ctx, "ignoring unreadable saved period", "value", string(raw))
		} else {
			period = saved
			if !s.Calendar.IsAligned(saved) {
				s.Logger.InfoContext(ctx, "saved period is off the pay grid", "period", saved.String())
			}
		}
	}

	s.mu.Lock()
	s.period = period
	s.mu.Unlock()
	return period, nil
}

// Navigate moves the current period by delta periods.
func (s *Session) Navigate(ctx context.Context, delta int) (calendar.PayPeriod, error) {
	return s.set(ctx, s.Calendar.Shift(s.Period(), delta))
}

// SetRange switches to an explicit range. No alignment is applied.
func (s *Session) SetRange(ctx context.Context, start, end calendar.Date) (calendar.PayPeriod, error) {
	p, err := calendar.NewRange(start, end)
	if err != nil {
		return calendar.PayPeriod{}, &ValidationError{Field: "period", Value: start.String() + ".." + end.String(), Reason: err.Error()}
	}
	return s.set(ctx, p)
}

// Reset switches to the grid period containing today.
func (s *Session) Reset(ctx context.Context, today calendar.Date) (calendar.PayPeriod, error) {
	return s.set(ctx, s.Calendar.Current(today))
}

func (s *Session) set(ctx context.Context, p calendar.PayPeriod) (calendar.PayPeriod, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return calendar.PayPeriod{}, err
	}
	if err := s.State.Put(ctx, CurrentPeriodKey, raw); err != nil {
		s.Logger.ErrorContext(ctx, "failed to save period", "period", p.String(), "error", err)
		return calendar.PayPeriod{}, &PersistenceError{Op: "save period", Err: err}
	}

	s.mu.Lock()
	s.period = p
	s.mu.Unlock()
	return p, nil
}

// SaveSnapshot stores the entries that fall in p under p's snapshot key.
func (s *Session) SaveSnapshot(ctx context.Context, p calendar.PayPeriod, entries []TimeEntry) (ReportSnapshot, error) {
	snap := ReportSnapshot{
		StartDate:   p.Start,
		EndDate:     p.End,
		TimeEntries: EntriesInPeriod(entries, p, s.Location),
	}
	if snap.TimeEntries == nil {
		snap.TimeEntries = []TimeEntry{}
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return ReportSnapshot{}, err
	}
	if err := s.State.Put(ctx, SnapshotKey(p), raw); err != nil {
		return ReportSnapshot{}, &PersistenceError{Op: "save snapshot", Err: err}
	}
	return snap, nil
}

// LoadSnapshot returns the saved snapshot for p, or nil when there is none.
func (s *Session) LoadSnapshot(ctx context.Context, p calendar.PayPeriod) (*ReportSnapshot, error) {
	raw, ok, err := s.State.Get(ctx, SnapshotKey(p))
	if err != nil {
		return nil, &PersistenceError{Op: "load snapshot", Err: err}
	}
	if !ok {
		return nil, nil
	}
	var snap ReportSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", SnapshotKey(p), err)
	}
	return &snap, nil
}
