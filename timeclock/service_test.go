package timeclock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timeclock/timeclock"
	"github.com/warp/timeclock/timeclock/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var errDown = errors.New("backend unavailable")

// flakyStore fails writes on demand.
type flakyStore struct {
	*store.Memory
	failUpdate bool
	failDelete map[timeclock.EntryID]bool
	failAppend bool
}

func (f *flakyStore) UpdateTime(ctx context.Context, id timeclock.EntryID, at time.Time) error {
	if f.failUpdate {
		return errDown
	}
	return f.Memory.UpdateTime(ctx, id, at)
}

func (f *flakyStore) Delete(ctx context.Context, id timeclock.EntryID) error {
	if f.failDelete[id] {
		return errDown
	}
	return f.Memory.Delete(ctx, id)
}

func (f *flakyStore) Append(ctx context.Context, e timeclock.TimeEntry) (timeclock.TimeEntry, error) {
	if f.failAppend {
		return timeclock.TimeEntry{}, errDown
	}
	return f.Memory.Append(ctx, e)
}

var (
	avery = timeclock.Employee{ID: "e1", Name: "Avery", Department: "Kitchen"}
	blake = timeclock.Employee{ID: "e2", Name: "Blake", Department: "Front"}
)

func setupService(t *testing.T) (*timeclock.Service, *flakyStore) {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	require.NoError(t, mem.SaveEmployee(ctx, avery))
	require.NoError(t, mem.SaveEmployee(ctx, blake))

	fs := &flakyStore{Memory: mem, failDelete: map[timeclock.EntryID]bool{}}
	svc := timeclock.NewService(fs, mem, utc, nil)
	svc.Now = func() time.Time { return at(april1, 12, 0) }
	require.NoError(t, svc.Load(ctx))
	return svc, fs
}

// seed records a closed shift for emp on day and returns the in and out entries.
func seed(t *testing.T, svc *timeclock.Service, emp timeclock.Employee, start, end time.Time) (timeclock.TimeEntry, timeclock.TimeEntry) {
	t.Helper()
	ctx := context.Background()
	a, err := svc.ClockAt(ctx, emp, start)
	require.NoError(t, err)
	b, err := svc.ClockAt(ctx, emp, end)
	require.NoError(t, err)
	require.Equal(t, timeclock.EntryIn, a.Type)
	require.Equal(t, timeclock.EntryOut, b.Type)
	return a, b
}

// =============================================================================
// CLOCK ACTIONS
// =============================================================================

func TestService_ClockAlternatesAndIsVisibleImmediately(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// WHEN: Clocking in then out
	first, err := svc.ClockAt(ctx, avery, at(april1, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, timeclock.EntryIn, first.Type)
	assert.Equal(t, timeclock.CategoryRegular, first.Category)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Kitchen", first.Department)
	assert.True(t, svc.IsWorking(avery.ID))

	second, err := svc.Clock(ctx, avery)
	require.NoError(t, err)
	assert.Equal(t, timeclock.EntryOut, second.Type)

	// THEN: The very next read sees both
	assert.False(t, svc.IsWorking(avery.ID))
	assert.Equal(t, timeclock.Minutes(240), svc.DailyMinutes(avery.ID, april1))
	assert.Len(t, svc.Entries(), 2)
}

func TestService_AppendFailureLeavesMirrorUnchanged(t *testing.T) {
	svc, fs := setupService(t)
	fs.failAppend = true

	_, err := svc.ClockAt(context.Background(), avery, at(april1, 8, 0))

	require.ErrorIs(t, err, timeclock.ErrPersistence)
	assert.ErrorIs(t, err, errDown)
	assert.Empty(t, svc.Entries())
}

func TestService_AddEntry(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	got, err := svc.AddEntry(ctx, timeclock.TimeEntry{
		EmployeeID: blake.ID,
		Time:       at(april1, 9, 0),
		Type:       timeclock.EntryIn,
		Category:   timeclock.CategorySick,
	})
	require.NoError(t, err)
	assert.Equal(t, "Blake", got.EmployeeName)
	assert.Equal(t, "Front", got.Department)
	assert.Equal(t, timeclock.CategorySick, got.Category)

	t.Run("rejects bad type", func(t *testing.T) {
		_, err := svc.AddEntry(ctx, timeclock.TimeEntry{EmployeeID: blake.ID, Time: at(april1, 9, 0), Type: "lunch"})
		assert.ErrorIs(t, err, timeclock.ErrValidation)
	})

	t.Run("rejects bad category", func(t *testing.T) {
		_, err := svc.AddEntry(ctx, timeclock.TimeEntry{EmployeeID: blake.ID, Time: at(april1, 9, 0), Type: timeclock.EntryIn, Category: "XYZ"})
		assert.ErrorIs(t, err, timeclock.ErrValidation)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.AddEntry(ctx, timeclock.TimeEntry{EmployeeID: "nobody", Time: at(april1, 9, 0), Type: timeclock.EntryIn})
		assert.ErrorIs(t, err, timeclock.ErrEmployeeNotFound)
	})
}

func TestService_LoadReplacesMirror(t *testing.T) {
	svc, fs := setupService(t)
	ctx := context.Background()

	_, err := fs.Memory.Append(ctx, in("", "e1", at(april1, 8, 0)))
	require.NoError(t, err)
	assert.Empty(t, svc.Entries())

	require.NoError(t, svc.Load(ctx))
	assert.Len(t, svc.Entries(), 1)
}

func TestService_Recent(t *testing.T) {
	svc, _ := setupService(t)
	seed(t, svc, avery, at(april1, 8, 0), at(april1, 9, 0))
	seed(t, svc, blake, at(april1, 10, 0), at(april1, 11, 0))

	recent := svc.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, at(april1, 11, 0), recent[0].Time)
	assert.Equal(t, at(april1, 9, 0), recent[2].Time)
}

// =============================================================================
// EDIT
// =============================================================================

func TestEdit_MovesEntryAndKeepsIdentity(t *testing.T) {
	svc, fs := setupService(t)
	ctx := context.Background()
	_, outEntry := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))

	// WHEN: Moving the out back one hour
	edited, err := svc.Edit(ctx, outEntry.ID, "2025-04-01T15:00:00Z")

	// THEN: Same ID, new time, visible in both mirror and store
	require.NoError(t, err)
	assert.Equal(t, outEntry.ID, edited.ID)
	assert.Equal(t, outEntry.Type, edited.Type)
	assert.Equal(t, at(april1, 15, 0), edited.Time)
	assert.Equal(t, timeclock.Minutes(420), svc.DailyMinutes(avery.ID, april1))

	stored, err := fs.Memory.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, at(april1, 15, 0), stored[0].Time)
}

func TestEdit_AcceptsOffsetsAndFractions(t *testing.T) {
	svc, _ := setupService(t)
	_, outEntry := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))

	edited, err := svc.Edit(context.Background(), outEntry.ID, "2025-04-01T10:30:00.500-07:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, edited.Time.Location())
	assert.Equal(t, time.Date(2025, 4, 1, 17, 30, 0, 500_000_000, time.UTC), edited.Time)
}

func TestEdit_UnparseableTimeChangesNothing(t *testing.T) {
	svc, fs := setupService(t)
	ctx := context.Background()
	_, outEntry := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))
	before := svc.Entries()

	_, err := svc.Edit(ctx, outEntry.ID, "yesterday at noon")

	require.ErrorIs(t, err, timeclock.ErrValidation)
	assert.True(t, timeclock.IsClientError(err))
	assert.Equal(t, before, svc.Entries())

	// The stored copy keeps its original time too
	stored, err := fs.Memory.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, outEntry.ID, stored[0].ID)
	assert.Equal(t, at(april1, 16, 0), stored[0].Time)
}

func TestEdit_MissingEntry(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Edit(context.Background(), "missing", "2025-04-01T15:00:00Z")

	require.ErrorIs(t, err, timeclock.ErrNotFound)
	assert.True(t, timeclock.IsNotFound(err))
}

func TestEdit_StoreFailureRollsBack(t *testing.T) {
	svc, fs := setupService(t)
	_, outEntry := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))
	fs.failUpdate = true

	_, err := svc.Edit(context.Background(), outEntry.ID, "2025-04-01T10:00:00Z")

	var perr *timeclock.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, outEntry.ID, perr.EntryID)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, timeclock.Minutes(480), svc.DailyMinutes(avery.ID, april1))
}

func TestEdit_EntryDeletedElsewhere(t *testing.T) {
	svc, fs := setupService(t)
	_, outEntry := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))
	require.NoError(t, fs.Memory.Delete(context.Background(), outEntry.ID))

	_, err := svc.Edit(context.Background(), outEntry.ID, "2025-04-01T10:00:00Z")

	require.ErrorIs(t, err, timeclock.ErrNotFound)
	assert.Len(t, svc.Entries(), 1)
}

// =============================================================================
// DELETE BY DAY
// =============================================================================

func TestDeleteDay_RemovesOnlyThatEmployeeAndDay(t *testing.T) {
	svc, fs := setupService(t)
	ctx := context.Background()
	day2 := april1.AddDays(1)
	seed(t, svc, avery, at(april1, 8, 0), at(april1, 12, 0))
	seed(t, svc, avery, at(april1, 13, 0), at(april1, 17, 0))
	seed(t, svc, avery, at(day2, 8, 0), at(day2, 9, 0))
	seed(t, svc, blake, at(april1, 8, 0), at(april1, 9, 0))

	n, err := svc.DeleteDay(ctx, avery.ID, april1)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, timeclock.Minutes(0), svc.DailyMinutes(avery.ID, april1))
	assert.Equal(t, timeclock.Minutes(60), svc.DailyMinutes(avery.ID, day2))
	assert.Equal(t, timeclock.Minutes(60), svc.DailyMinutes(blake.ID, april1))

	stored, err := fs.Memory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestDeleteDay_NothingToDelete(t *testing.T) {
	svc, _ := setupService(t)

	n, err := svc.DeleteDay(context.Background(), avery.ID, april1)

	assert.Zero(t, n)
	assert.ErrorIs(t, err, timeclock.ErrNotFound)
}

func TestDeleteDay_PartialFailureRestoresFailedEntries(t *testing.T) {
	svc, fs := setupService(t)
	inEntry, _ := seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))
	fs.failDelete[inEntry.ID] = true

	n, err := svc.DeleteDay(context.Background(), avery.ID, april1)

	assert.Equal(t, 1, n)
	require.ErrorIs(t, err, timeclock.ErrPersistence)
	entries := svc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, inEntry.ID, entries[0].ID)
	assert.True(t, svc.IsWorking(avery.ID))
}

// =============================================================================
// VIEWS
// =============================================================================

func TestService_ReportAndDashboard(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	seed(t, svc, avery, at(april1, 8, 0), at(april1, 16, 0))
	_, err := svc.ClockAt(ctx, blake, at(april1, 9, 0))
	require.NoError(t, err)

	report, err := svc.Report(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Front"}, report.DepartmentNames())
	assert.Equal(t, timeclock.Minutes(480), report.GrandTotal)

	dash, err := svc.Dashboard(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, april1, dash.Today)
	require.Len(t, dash.Rows, 2)
	assert.Equal(t, timeclock.Minutes(480), dash.Rows[0].Today)
	assert.True(t, dash.Rows[1].Working)

	card := svc.TimeCard(avery.ID, period)
	assert.Equal(t, timeclock.Minutes(480), card.Total)
	assert.Equal(t, timeclock.Minutes(480), svc.Apportion(avery.ID, period).Get(timeclock.CategoryRegular))
	assert.Len(t, svc.EntriesInPeriod(period), 3)
}
