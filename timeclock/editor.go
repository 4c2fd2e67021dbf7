/*
editor.go - Corrections to historical clock events

OPERATIONS:
  Edit(id, newTime)        Move one entry to a new instant. Identity is kept.
  Delete(employee, date)   Remove every entry of that employee on that date.

ORDER OF WRITES:
  The mirror is updated first so the admin sees the change immediately,
  then the store. If the store fails the mirror is put back the way it was
  and a PersistenceError is returned.

NO ORDERING CHECK:
  An edit may leave the employee's history out of order or with two ins in
  a row. That is accepted; the aggregator's pairing policy absorbs it.
*/
package timeclock

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/warp/timeclock/calendar"
)

// Editor applies admin corrections.
type Editor struct {
	Store    EntryStore
	Mirror   *Mirror
	Location *time.Location
	Logger   *slog.Logger
}

// ParseTimestamp parses an RFC 3339 instant (fractional seconds allowed) and
// returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "time", Value: s, Reason: "expected an RFC 3339 timestamp"}
	}
	return t.UTC(), nil
}

// Edit sets a new time on the entry. A malformed newTime fails with a
// ValidationError and changes nothing.
func (ed *Editor) Edit(ctx context.Context, id EntryID, newTime string) (TimeEntry, error) {
	at, err := ParseTimestamp(newTime)
	if err != nil {
		return TimeEntry{}, err
	}

	previous, ok := ed.Mirror.Get(id)
	if !ok {
		ed.log().WarnContext(ctx, "edit target missing", "entry_id", id)
		return TimeEntry{}, &NotFoundError{Kind: "time entry", ID: string(id)}
	}

	updated := previous
	updated.Time = at
	ed.Mirror.Put(updated)

	if err := ed.Store.UpdateTime(ctx, id, at); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			// Someone else deleted it; drop the stale local copy.
			ed.Mirror.Remove(id)
			ed.log().WarnContext(ctx, "edit target deleted in store", "entry_id", id)
			return TimeEntry{}, &NotFoundError{Kind: "time entry", ID: string(id)}
		}
		ed.Mirror.Put(previous)
		ed.log().ErrorContext(ctx, "edit failed, rolled back", "entry_id", id, "error", err)
		return TimeEntry{}, &PersistenceError{Op: "update", EntryID: id, Err: err}
	}

	ed.log().InfoContext(ctx, "entry edited",
		"entry_id", id,
		"employee_id", updated.EmployeeID,
		"from", previous.Time,
		"to", at,
	)
	return updated, nil
}

// Delete removes every entry of the employee on the local date and returns
// how many were removed. Entries the store no longer has are counted as
// removed. Entries the store failed to delete are restored locally.
func (ed *Editor) Delete(ctx context.Context, employeeID EmployeeID, date calendar.Date) (int, error) {
	removed := ed.Mirror.RemoveDay(employeeID, date, ed.Location)
	if len(removed) == 0 {
		ed.log().WarnContext(ctx, "delete matched no entries", "employee_id", employeeID, "date", date)
		return 0, &NotFoundError{Kind: "entries for " + string(employeeID) + " on", ID: date.String()}
	}

	var (
		deleted int
		errs    []error
		firstID EntryID
	)
	for _, e := range removed {
		err := ed.Store.Delete(ctx, e.ID)
		if err == nil || errors.Is(err, ErrEntryNotFound) {
			deleted++
			continue
		}
		ed.Mirror.Put(e)
		if firstID == "" {
			firstID = e.ID
		}
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		ed.log().ErrorContext(ctx, "delete partially failed",
			"employee_id", employeeID, "date", date,
			"deleted", deleted, "failed", len(errs))
		return deleted, &PersistenceError{Op: "delete", EntryID: firstID, Err: errors.Join(errs...)}
	}

	ed.log().InfoContext(ctx, "entries deleted", "employee_id", employeeID, "date", date, "count", deleted)
	return deleted, nil
}

func (ed *Editor) log() *slog.Logger {
	if ed.Logger == nil {
		return slog.Default()
	}
	return ed.Logger
}
