package health

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pageza/foodtracking/backend/internal/model"
)

var ErrRecordNotFound = errors.New("record not found")

// MemoryStore is an in-process health store. It backs local development
// and tests, and can be told to fail individual operations.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	pingErr error
	failOps map[string]error
	calls   map[string]int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		failOps: make(map[string]error),
		calls:   make(map[string]int),
	}
}

func clientRecordID(entryID uint) string {
	return "entry-" + strconv.FormatUint(uint64(entryID), 10)
}

// SetPingError makes Ping return err until cleared with nil.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// FailOperation makes every call of op ("exists", "create", "update",
// "delete") return err until cleared with nil.
func (m *MemoryStore) FailOperation(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOps, op)
		return
	}
	m.failOps[op] = err
}

// Forget removes a record as if it had been deleted outside the app.
func (m *MemoryStore) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}

// Put stores a record under a fixed id.
func (m *MemoryStore) Put(id string, r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = id
	m.records[id] = r
}

// Record returns the stored record with the given id.
func (m *MemoryStore) Record(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MemoryStore) begin(op string) error {
	m.calls[op]++
	return m.failOps[op]
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("exists"); err != nil {
		return false, err
	}
	_, ok := m.records[id]
	return ok, nil
}

func (m *MemoryStore) Create(ctx context.Context, entry model.FoodEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("create"); err != nil {
		return "", err
	}
	r := RecordFromEntry(entry)
	r.ID = uuid.New().String()
	m.records[r.ID] = r
	return r.ID, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, entry model.FoodEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("update"); err != nil {
		return err
	}
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	r := RecordFromEntry(entry)
	r.ID = id
	m.records[id] = r
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("delete"); err != nil {
		return err
	}
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	delete(m.records, id)
	return nil
}
