/*
store.go - Persistence ports used by the engine

PURPOSE:
  The engine never talks to a database directly. It is handed these ports
  and treats the entry store as a log it can append to, patch by ID and
  delete from. The local mirror in Service is the read path; the store is
  the durable copy.

KEY INTERFACES:
  EntryStore:        Clock events (append / update time / delete / list)
  StateStore:        Small keyed documents (last viewed period, report snapshots)
  EmployeeDirectory: Employee records

IMPLEMENTATIONS:
  - timeclock/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go:    SQLite
*/
package timeclock

import (
	"context"
	"time"
)

// EntryStore persists clock events.
type EntryStore interface {
	// List returns every entry, newest first.
	List(ctx context.Context) ([]TimeEntry, error)

	// ListRange returns entries with from <= Time < to, newest first.
	ListRange(ctx context.Context, from, to time.Time) ([]TimeEntry, error)

	// Append stores a new entry and returns it with its assigned ID.
	Append(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// UpdateTime changes the Time of an existing entry.
	// Returns ErrEntryNotFound for unknown IDs.
	UpdateTime(ctx context.Context, id EntryID, at time.Time) error

	// Delete removes one entry. Returns ErrEntryNotFound for unknown IDs.
	Delete(ctx context.Context, id EntryID) error
}

// StateStore holds small JSON documents under string keys.
type StateStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put creates or replaces the value.
	Put(ctx context.Context, key string, value []byte) error
}

// EmployeeDirectory owns employee records.
type EmployeeDirectory interface {
	ListEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns ErrEmployeeNotFound for unknown IDs.
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)

	SaveEmployee(ctx context.Context, emp Employee) error
}
