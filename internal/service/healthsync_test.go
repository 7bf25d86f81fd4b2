package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pageza/foodtracking/backend/internal/health"
	"github.com/pageza/foodtracking/backend/internal/mocks"
	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// memEntries is an EntryRepository over a map, safe for concurrent use.
type memEntries struct {
	mu      sync.Mutex
	rows    map[uint]model.FoodEntry
	nextID  uint
	updates int
}

// editingStore runs onCreate before storing a record, standing in for a
// user edit that lands while the health store call is in flight.
type editingStore struct {
	*health.MemoryStore
	onCreate func(ctx context.Context, entry model.FoodEntry)
}

func (s *editingStore) Create(ctx context.Context, entry model.FoodEntry) (string, error) {
	if s.onCreate != nil {
		s.onCreate(ctx, entry)
	}
	return s.MemoryStore.Create(ctx, entry)
}

func newMemEntries(entries ...model.FoodEntry) *memEntries {
	m := &memEntries{rows: make(map[uint]model.FoodEntry)}
	for i := range entries {
		_, _ = m.Insert(context.Background(), &entries[i])
	}
	return m
}

func (m *memEntries) Insert(ctx context.Context, entry *model.FoodEntry) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	m.rows[entry.ID] = *entry
	return entry.ID, nil
}

func (m *memEntries) Update(ctx context.Context, entry *model.FoodEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[entry.ID]; !ok {
		return ErrEntryNotFound
	}
	m.updates++
	m.rows[entry.ID] = *entry
	return nil
}

func (m *memEntries) SetSyncState(ctx context.Context, id uint, state model.SyncState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return ErrEntryNotFound
	}
	m.updates++
	row.Sync = state
	m.rows[id] = row
	return nil
}

func (m *memEntries) Delete(ctx context.Context, entry *model.FoodEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[entry.ID]; !ok {
		return ErrEntryNotFound
	}
	delete(m.rows, entry.ID)
	return nil
}

func (m *memEntries) Get(ctx context.Context, id uint) (*model.FoodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &e, nil
}

func (m *memEntries) filter(keep func(model.FoodEntry) bool) []model.FoodEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.FoodEntry
	for _, e := range m.rows {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memEntries) ListForDate(ctx context.Context, date model.Date) ([]model.FoodEntry, error) {
	return m.filter(func(e model.FoodEntry) bool { return e.Date.Equal(date) }), nil
}

func (m *memEntries) ListRange(ctx context.Context, start, end model.Date) ([]model.FoodEntry, error) {
	return m.filter(func(e model.FoodEntry) bool {
		return !e.Date.Before(start.Time) && !e.Date.After(end.Time)
	}), nil
}

func (m *memEntries) ListAll(ctx context.Context) ([]model.FoodEntry, error) {
	return m.filter(func(model.FoodEntry) bool { return true }), nil
}

func (m *memEntries) row(t *testing.T, id uint) model.FoodEntry {
	t.Helper()
	e, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	return *e
}

// countingRecorder tallies SyncRecorder calls.
type countingRecorder struct {
	mu      sync.Mutex
	ops     map[string]int
	batches []*SyncResult
}

func (r *countingRecorder) RecordOperation(op string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = make(map[string]int)
	}
	key := op + ":ok"
	if !ok {
		key = op + ":error"
	}
	r.ops[key]++
}

func (r *countingRecorder) RecordBatch(result *SyncResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, result)
}

func TestReconcile_EmptyBatchTouchesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := new(mocks.MockHealthStore)
	svc := NewHealthSyncService(newMemEntries(), store)

	result := svc.Reconcile(context.Background(), nil)

	assert.Equal(t, "✓ All 0 entries checked", result.Message())
	assert.NoError(t, result.Err)
	store.AssertNotCalled(t, "Ping", mock.Anything)
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestReconcile_UnsyncedEntryNeverChecked(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemEntries(testhelpers.Entry("Apple", 52))
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(e model.FoodEntry) bool {
		return e.Name == "Apple" && !e.Sync.IsSynced()
	})).Return("hc-1", nil).Once()

	svc := NewHealthSyncService(repo, store)
	result := svc.Reconcile(context.Background(), entries)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, "✓ Synced/Updated 1 entries", result.Message())

	id, ok := repo.row(t, entries[0].ID).Sync.ExternalID()
	require.True(t, ok)
	assert.Equal(t, "hc-1", id)
}

func TestReconcile_ExistingRecordIsUpdated(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := testhelpers.Entry("Toast", 80)
	entry.Sync = model.Synced("hc-keep")
	repo := newMemEntries(entry)
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "hc-keep").Return(true, nil)
	store.On("Update", mock.Anything, "hc-keep", mock.Anything).Return(nil)

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, model.Synced("hc-keep"), repo.row(t, entries[0].ID).Sync)
}

func TestReconcile_StaleIDIsReplaced(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := health.NewMemoryStore()
	ctx := context.Background()

	entry := testhelpers.Entry("Soup", 120)
	oldID, err := store.Create(ctx, entry)
	require.NoError(t, err)
	entry.Sync = model.Synced(oldID)
	repo := newMemEntries(entry)

	// Deleted from the health app behind our back.
	store.Forget(oldID)

	entries, _ := repo.ListAll(ctx)
	result := NewHealthSyncService(repo, store).Reconcile(ctx, entries)

	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Reinserted)

	newID, ok := repo.row(t, entries[0].ID).Sync.ExternalID()
	require.True(t, ok)
	assert.NotEqual(t, oldID, newID)
	_, stored := store.Record(newID)
	assert.True(t, stored)
	assert.Equal(t, 1, store.Len())
}

func TestReconcile_ExistsErrorTriggersReinsert(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := testhelpers.Entry("Pasta", 400)
	entry.Sync = model.Synced("hc-unknown")
	repo := newMemEntries(entry)
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "hc-unknown").Return(false, errors.New("timeout"))
	store.On("Create", mock.Anything, mock.MatchedBy(func(e model.FoodEntry) bool {
		return !e.Sync.IsSynced()
	})).Return("hc-new", nil)

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)

	store.AssertExpectations(t)
	assert.Equal(t, 1, result.Reinserted)
	assert.Equal(t, model.Synced("hc-new"), repo.row(t, entries[0].ID).Sync)
}

func TestReconcile_FailedInsertLeavesEntryUnsynced(t *testing.T) {
	defer goleak.VerifyNone(t)

	fresh := testhelpers.Entry("Fresh", 10)
	stale := testhelpers.Entry("Stale", 20)
	stale.Sync = model.Synced("hc-gone")
	repo := newMemEntries(fresh, stale)
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Exists", mock.Anything, "hc-gone").Return(false, nil)
	store.On("Create", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)

	assert.Equal(t, 2, result.InsertFailed)
	assert.Equal(t, 0, result.Inserted)
	assert.NoError(t, result.Err)
	assert.Equal(t, "✓ Synced/Updated 0 entries (2 failed)", result.Message())

	for _, e := range entries {
		assert.False(t, repo.row(t, e.ID).Sync.IsSynced(), "entry %s", e.Name)
	}
}

func TestReconcile_EmptyIDCountsAsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemEntries(testhelpers.Entry("Nameless", 1))
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Create", mock.Anything, mock.Anything).Return("", nil)

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)
	assert.Equal(t, 1, result.InsertFailed)
	assert.False(t, repo.row(t, entries[0].ID).Sync.IsSynced())
}

func TestReconcile_UpdateFailureIsCounted(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := testhelpers.Entry("Salad", 90)
	entry.Sync = model.Synced("hc-1")
	repo := newMemEntries(entry)
	entries, _ := repo.ListAll(context.Background())

	store := health.NewMemoryStore()
	store.Put("hc-1", health.RecordFromEntry(entry))
	store.FailOperation("update", errors.New("conflict"))

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)

	assert.Equal(t, 1, result.UpdateFailed)
	assert.Equal(t, model.Synced("hc-1"), repo.row(t, entries[0].ID).Sync)
}

func TestReconcile_StoreUnavailable(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemEntries(testhelpers.Entry("Apple", 52))
	entries, _ := repo.ListAll(context.Background())

	store := new(mocks.MockHealthStore)
	store.On("Ping", mock.Anything).Return(errors.New("permission denied"))

	result := NewHealthSyncService(repo, store).Reconcile(context.Background(), entries)

	require.ErrorIs(t, result.Err, ErrStoreUnavailable)
	assert.Contains(t, result.Message(), "✗ Sync failed:")
	assert.Contains(t, result.Message(), "permission denied")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Zero(t, repo.updates)
}

func TestReconcile_MixedBatchWithRecorder(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := health.NewMemoryStore()

	var seed []model.FoodEntry
	for i := 0; i < 10; i++ {
		e := testhelpers.Entry("Item", 10*i)
		if i%2 == 0 {
			id, err := store.Create(ctx, e)
			require.NoError(t, err)
			e.Sync = model.Synced(id)
		}
		seed = append(seed, e)
	}
	repo := newMemEntries(seed...)
	entries, _ := repo.ListAll(ctx)

	recorder := &countingRecorder{}
	svc := NewHealthSyncService(repo, store, WithSyncConcurrency(3), WithSyncRecorder(recorder))
	result := svc.Reconcile(ctx, entries)

	assert.Equal(t, 10, result.Checked)
	assert.Equal(t, 5, result.Inserted)
	assert.Equal(t, 5, result.Updated)
	assert.Equal(t, "✓ Synced/Updated 10 entries", result.Message())
	assert.Equal(t, 10, store.Len())

	assert.Equal(t, 5, recorder.ops["exists:ok"])
	assert.Equal(t, 5, recorder.ops["create:ok"])
	assert.Equal(t, 5, recorder.ops["update:ok"])
	require.Len(t, recorder.batches, 1)
	assert.Same(t, result, recorder.batches[0])
}

func TestReconcile_CancelledContextSkipsEntries(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemEntries(testhelpers.Entry("A", 1), testhelpers.Entry("B", 2))
	entries, _ := repo.ListAll(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewHealthSyncService(repo, health.NewMemoryStore()).Reconcile(ctx, entries)

	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, "✓ Synced/Updated 0 entries (2 skipped)", result.Message())
}

func TestSyncRecent_UsesWindow(t *testing.T) {
	defer goleak.VerifyNone(t)

	today := testhelpers.Day
	inside := testhelpers.Entry("Inside", 10)
	inside.Date = today.AddDays(-7)
	edge := testhelpers.Entry("Today", 10)
	outside := testhelpers.Entry("Outside", 10)
	outside.Date = today.AddDays(-8)
	repo := newMemEntries(inside, edge, outside)

	store := health.NewMemoryStore()
	svc := NewHealthSyncService(repo, store, WithClock(func() time.Time {
		return testhelpers.NoonOn(today)
	}))

	result := svc.SyncRecent(context.Background())
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 2, result.Inserted)

	for _, e := range repo.filter(func(model.FoodEntry) bool { return true }) {
		assert.Equal(t, e.Name != "Outside", e.Sync.IsSynced(), e.Name)
	}
}

func TestSyncRecent_WithSQLite(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewGormEntryRepository(db)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		e := testhelpers.Entry("Meal", 100+i)
		_, err := repo.Insert(ctx, &e)
		require.NoError(t, err)
	}

	store := health.NewMemoryStore()
	svc := NewHealthSyncService(repo, store, WithClock(func() time.Time {
		return testhelpers.NoonOn(testhelpers.Day)
	}))

	first := svc.SyncRecent(ctx)
	require.NoError(t, first.Err)
	assert.Equal(t, 6, first.Inserted)

	second := svc.SyncRecent(ctx)
	assert.Equal(t, 6, second.Updated)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 6, store.Len())
}

func TestReconcile_KeepsEditsMadeDuringInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEntryRepository(testhelpers.SetupTestDatabase(t))
	entrySvc := NewEntryService(repo, nil)

	rice := testhelpers.Entry("Rice", 130)
	_, err := repo.Insert(ctx, &rice)
	require.NoError(t, err)

	store := &editingStore{MemoryStore: health.NewMemoryStore()}
	store.onCreate = func(ctx context.Context, entry model.FoodEntry) {
		_, err := entrySvc.UpdateWeight(ctx, entry.ID, 300)
		assert.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	result := NewHealthSyncService(repo, store).Reconcile(ctx, entries)
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Inserted)

	stored, err := repo.Get(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.WeightGrams)
	assert.Equal(t, 390, stored.Calories)
	assert.True(t, stored.Sync.IsSynced())
}

func TestReconcile_ClearingStaleIDKeepsEdits(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEntryRepository(testhelpers.SetupTestDatabase(t))
	entrySvc := NewEntryService(repo, nil)

	soup := testhelpers.Entry("Soup", 80)
	soup.Sync = model.Synced("hc-gone")
	_, err := repo.Insert(ctx, &soup)
	require.NoError(t, err)

	store := &editingStore{MemoryStore: health.NewMemoryStore()}
	store.FailOperation("create", errors.New("quota exceeded"))
	store.onCreate = func(ctx context.Context, entry model.FoodEntry) {
		_, err := entrySvc.UpdateWeight(ctx, entry.ID, 250)
		assert.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	result := NewHealthSyncService(repo, store).Reconcile(ctx, entries)
	assert.Equal(t, 1, result.InsertFailed)

	stored, err := repo.Get(ctx, soup.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, stored.WeightGrams)
	assert.Equal(t, 200, stored.Calories)
	assert.False(t, stored.Sync.IsSynced())
}
