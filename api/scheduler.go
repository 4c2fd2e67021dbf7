/*
scheduler.go - Automatic report snapshot at pay period close

PURPOSE:
  Periodically checks whether the calendar has moved into a new pay period
  and, when it has, saves the report snapshot of the period that just
  closed. Admins still get a fresh snapshot every time they open the
  payroll report; this makes sure a closed period always has one even if
  nobody looked at it.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The closed period is the grid period before the one containing today
  - Each closed period is snapshotted once per process; the first check
    after start always snapshots the most recently closed period

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(svc, session, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetPayrollReport (snapshot on view)
  - timeclock/session.go: SaveSnapshot
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/timeclock/calendar"
	"github.com/warp/timeclock/timeclock"
)

// SnapshotScheduler snapshots each pay period once it has closed.
type SnapshotScheduler struct {
	Service       *timeclock.Service
	Session       *timeclock.Session
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker     *time.Ticker
	stop       chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	lastMu     sync.Mutex
	lastClosed calendar.PayPeriod
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(svc *timeclock.Service, session *timeclock.Session, logger *slog.Logger) *SnapshotScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotScheduler{
		Service:       svc,
		Session:       session,
		Logger:        logger.With("component", "scheduler"),
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}

	if s.ticker != nil {
		return
	}

	s.stop = make(chan struct{})
	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("scheduler started", "interval", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("scheduler stopped")
	}
}

func (s *SnapshotScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunNow performs one check and reports whether a snapshot was saved.
func (s *SnapshotScheduler) RunNow(ctx context.Context) bool {
	today := calendar.DateOf(s.Service.Now(), s.Service.Location)
	cal := s.Session.Calendar
	closed := cal.Previous(cal.Current(today))

	s.lastMu.Lock()
	done := s.lastClosed == closed
	s.lastMu.Unlock()
	if done {
		return false
	}

	snap, err := s.Session.SaveSnapshot(ctx, closed, s.Service.Entries())
	if err != nil {
		s.Logger.ErrorContext(ctx, "period close snapshot failed", "period", closed.String(), "error", err)
		return false
	}

	s.lastMu.Lock()
	s.lastClosed = closed
	s.lastMu.Unlock()

	s.Logger.InfoContext(ctx, "period close snapshot saved",
		"period", closed.String(),
		"entries", len(snap.TimeEntries),
	)
	return true
}
