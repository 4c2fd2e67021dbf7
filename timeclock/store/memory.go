// Package store provides in-memory implementations of the timeclock ports.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/timeclock/timeclock"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements EntryStore, StateStore and EmployeeDirectory.
// Entries are kept sorted oldest first.
type Memory struct {
	mu        sync.RWMutex
	entries   []timeclock.TimeEntry
	state     map[string][]byte
	employees map[timeclock.EmployeeID]timeclock.Employee
	order     []timeclock.EmployeeID
}

func NewMemory() *Memory {
	return &Memory{
		state:     make(map[string][]byte),
		employees: make(map[timeclock.EmployeeID]timeclock.Employee),
	}
}

// Append assigns an ID when the entry has none and inserts it in time order.
func (m *Memory) Append(_ context.Context, entry timeclock.TimeEntry) (timeclock.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = timeclock.EntryID(uuid.New().String())
	}
	m.insertLocked(entry)
	return entry, nil
}

func (m *Memory) insertLocked(entry timeclock.TimeEntry) {
	// Binary search for insertion point after any entry at the same time
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].Time.After(entry.Time)
	})

	m.entries = append(m.entries, timeclock.TimeEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = entry
}

func (m *Memory) indexLocked(id timeclock.EntryID) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) UpdateTime(_ context.Context, id timeclock.EntryID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return timeclock.ErrEntryNotFound
	}
	entry := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	entry.Time = at
	m.insertLocked(entry)
	return nil
}

func (m *Memory) Delete(_ context.Context, id timeclock.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return timeclock.ErrEntryNotFound
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return nil
}

func (m *Memory) List(_ context.Context) ([]timeclock.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]timeclock.TimeEntry, len(m.entries))
	copy(result, m.entries)
	timeclock.SortDescending(result)
	return result, nil
}

func (m *Memory) ListRange(_ context.Context, from, to time.Time) ([]timeclock.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timeclock.TimeEntry
	for _, e := range m.entries {
		if !e.Time.Before(from) && e.Time.Before(to) {
			result = append(result, e)
		}
	}
	timeclock.SortDescending(result)
	return result, nil
}

// =============================================================================
// STATE
// =============================================================================

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.state[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state[key] = append([]byte(nil), value...)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns employees in the order they were first saved.
func (m *Memory) ListEmployees(_ context.Context) ([]timeclock.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]timeclock.Employee, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.employees[id])
	}
	return result, nil
}

func (m *Memory) GetEmployee(_ context.Context, id timeclock.EmployeeID) (timeclock.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return timeclock.Employee{}, timeclock.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp timeclock.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[emp.ID]; !ok {
		m.order = append(m.order, emp.ID)
	}
	m.employees[emp.ID] = emp
	return nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	m.state = make(map[string][]byte)
	m.employees = make(map[timeclock.EmployeeID]timeclock.Employee)
	m.order = nil
	return nil
}
