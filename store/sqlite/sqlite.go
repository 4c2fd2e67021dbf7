/*
Package sqlite provides a SQLite-backed implementation of the timeclock ports.

PURPOSE:
  Durable copy of the clock event log, the employee directory and the small
  keyed state documents (current pay period, report snapshots, settings).
  The engine reads from its local mirror; this store is written through.

INTERFACES IMPLEMENTED:
  timeclock.EntryStore:        Clock events
  timeclock.StateStore:        Keyed JSON documents
  timeclock.EmployeeDirectory: Employee records

KEY TABLES:
  time_entries: One row per clock event. Time may be patched by admin edits,
                rows may be deleted by day. Never otherwise mutated.
  employees:    Directory, listed in insertion order
  state:        key -> JSON value

TIMESTAMPS:
  Stored as UTC text with a fixed nine-digit fraction so that text order is
  time order and range queries can compare strings.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to a
  single connection, otherwise every pooled connection would see its own
  empty database.

USAGE:
  store, err := sqlite.New("./data/timeclock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := timeclock.NewService(store, store, loc, logger)

SEE ALSO:
  - timeclock/store.go: Port definitions
  - timeclock/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/timeclock/timeclock"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the timeclock ports using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Clock events
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		time TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('in', 'out')),
		category TEXT NOT NULL DEFAULT 'REG',
		created_at TEXT NOT NULL
	);

	-- Full log load and recent activity (newest first)
	CREATE INDEX IF NOT EXISTS idx_time_entries_time
		ON time_entries(time DESC);

	-- Per-employee day and period windows (hot path)
	CREATE INDEX IF NOT EXISTS idx_time_entries_employee_time
		ON time_entries(employee_id, time);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pin TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Keyed state documents
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE (timeclock.EntryStore interface)
// =============================================================================

const entryColumns = `id, employee_id, employee_name, department, time, type, category`

// Append stores a new entry. An ID is generated when the entry has none.
func (s *Store) Append(ctx context.Context, entry timeclock.TimeEntry) (timeclock.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = timeclock.EntryID(uuid.New().String())
	}
	if entry.Category == "" {
		entry.Category = timeclock.CategoryRegular
	}
	entry.Time = entry.Time.UTC()

	query := `
		INSERT INTO time_entries (` + entryColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.EmployeeID, entry.EmployeeName, entry.Department,
		entry.Time.Format(timeLayout), entry.Type, entry.Category,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return timeclock.TimeEntry{}, fmt.Errorf("failed to append entry: %w", err)
	}
	return entry, nil
}

// UpdateTime moves an entry to a new instant.
func (s *Store) UpdateTime(ctx context.Context, id timeclock.EntryID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE time_entries SET time = ? WHERE id = ?",
		at.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", id, err)
	}
	return requireRow(res)
}

// Delete removes one entry.
func (s *Store) Delete(ctx context.Context, id timeclock.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return requireRow(res)
}

// List returns every entry, newest first.
func (s *Store) List(ctx context.Context) ([]timeclock.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		ORDER BY time DESC, created_at DESC
	`
	return s.queryEntries(ctx, query)
}

// ListRange returns entries with from <= time < to, newest first.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]timeclock.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE time >= ? AND time < ?
		ORDER BY time DESC, created_at DESC
	`
	return s.queryEntries(ctx, query,
		from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]timeclock.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (timeclock.TimeEntry, error) {
	var (
		entry timeclock.TimeEntry
		at    string
	)

	err := rows.Scan(
		&entry.ID, &entry.EmployeeID, &entry.EmployeeName, &entry.Department,
		&at, &entry.Type, &entry.Category,
	)
	if err != nil {
		return entry, fmt.Errorf("failed to scan entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return entry, fmt.Errorf("entry %s has bad time %q: %w", entry.ID, at, err)
	}
	entry.Time = t.UTC()
	return entry, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.ErrEntryNotFound
	}
	return nil
}

// =============================================================================
// STATE STORE (timeclock.StateStore interface)
// =============================================================================

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put creates or replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write state %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// EMPLOYEE DIRECTORY (timeclock.EmployeeDirectory interface)
// =============================================================================

// SaveEmployee creates or updates an employee. Updates keep the original
// position in the directory.
func (s *Store) SaveEmployee(ctx context.Context, emp timeclock.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, pin, department, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pin = excluded.pin,
			department = excluded.department
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.PIN, emp.Department,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id timeclock.EmployeeID) (timeclock.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp timeclock.Employee
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, pin, department FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &emp.PIN, &emp.Department)

	if errors.Is(err, sql.ErrNoRows) {
		return timeclock.Employee{}, timeclock.ErrEmployeeNotFound
	}
	if err != nil {
		return timeclock.Employee{}, err
	}
	return emp, nil
}

// ListEmployees returns all employees in insertion order.
func (s *Store) ListEmployees(ctx context.Context) ([]timeclock.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, pin, department FROM employees ORDER BY rowid",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timeclock.Employee
	for rows.Next() {
		var emp timeclock.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.PIN, &emp.Department); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"time_entries", "employees", "state"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
