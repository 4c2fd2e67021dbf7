/*
errors.go - Centralized error types for the time accounting engine

ERROR CATEGORIES:
  1. Validation errors  - Bad input (unparseable timestamp, unknown category).
                          Surfaced to the user, no state change.
  2. Persistence errors - Store operation failed. Local state is rolled back.
  3. Not found errors   - Edit/delete target is gone. Callers treat this as
                          a no-op success and log it.

Aggregation functions never return errors: odd event orderings are absorbed
by the pairing policy in aggregate.go.

USAGE:
  if errors.Is(err, timeclock.ErrValidation) { ... 400 ... }
  var nf *timeclock.NotFoundError
  if errors.As(err, &nf) { ... log, no-op ... }
*/
package timeclock

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation marks input rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a failed store operation.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound marks an edit/delete target that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrEntryNotFound is returned by EntryStore implementations for unknown IDs.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrEmployeeNotFound is returned by directories for unknown employees.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes rejected input.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps a store failure.
type PersistenceError struct {
	Op      string
	EntryID EntryID
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("%s entry %s: %v", e.Op, e.EntryID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying store error.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// NotFoundError names the missing target.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing target.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}
