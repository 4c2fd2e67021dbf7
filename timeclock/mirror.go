package timeclock

import (
	"sync"
	"time"

	"github.com/warp/timeclock/calendar"
)

// Mirror is the local in-memory copy of the entry log. Every view reads from
// it, and writers update it alongside the store, so an acknowledged write is
// visible to the very next aggregation call. Entries are unique by ID.
type Mirror struct {
	mu      sync.RWMutex
	entries []TimeEntry
}

func NewMirror() *Mirror {
	return &Mirror{}
}

// Reset replaces the whole content.
func (m *Mirror) Reset(entries []TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]TimeEntry(nil), entries...)
}

// Snapshot returns a copy of all entries, oldest first.
func (m *Mirror) Snapshot() []TimeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := append([]TimeEntry(nil), m.entries...)
	SortAscending(result)
	return result
}

// Len returns the number of entries.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Get returns the entry with the given ID.
func (m *Mirror) Get(id EntryID) (TimeEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexLocked(id); i >= 0 {
		return m.entries[i], true
	}
	return TimeEntry{}, false
}

// Put inserts the entry or replaces the one with the same ID.
func (m *Mirror) Put(entry TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(entry.ID); i >= 0 {
		m.entries[i] = entry
		return
	}
	m.entries = append(m.entries, entry)
}

// Remove drops the entry with the given ID, if present.
func (m *Mirror) Remove(id EntryID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(id); i >= 0 {
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
}

// RemoveDay drops every entry of the employee on the local date and returns
// what was removed.
func (m *Mirror) RemoveDay(employeeID EmployeeID, date calendar.Date, loc *time.Location) []TimeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []TimeEntry
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.Date(loc) == date {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed
}

func (m *Mirror) indexLocked(id EntryID) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
