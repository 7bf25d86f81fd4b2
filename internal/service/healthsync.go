package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
	"golang.org/x/sync/errgroup"
)

var ErrStoreUnavailable = errors.New("health store unavailable")

const (
	DefaultSyncWindowDays  = 7
	DefaultSyncConcurrency = 4
)

// Operation names reported to a SyncRecorder.
const (
	OpExists = "exists"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// SyncAction is the decision taken for one entry during classification.
type SyncAction int

const (
	ActionInsert SyncAction = iota
	ActionUpdate
)

func (a SyncAction) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// SyncResult summarizes one reconciliation batch.
type SyncResult struct {
	Checked      int `json:"checked"`
	Inserted     int `json:"inserted"`
	Reinserted   int `json:"reinserted"`
	Updated      int `json:"updated"`
	InsertFailed int `json:"insert_failed"`
	UpdateFailed int `json:"update_failed"`
	Skipped      int `json:"skipped"`
	// Err is set only when the store was unreachable before any entry was
	// processed.
	Err     error             `json:"-"`
	Entries []model.FoodEntry `json:"-"`
}

// Succeeded counts the entries whose insert or update went through.
func (r *SyncResult) Succeeded() int {
	return r.Inserted + r.Updated
}

// Failed counts the entries whose insert or update was rejected.
func (r *SyncResult) Failed() int {
	return r.InsertFailed + r.UpdateFailed
}

// Message is the short status line shown to the user.
func (r *SyncResult) Message() string {
	if r.Err != nil {
		return fmt.Sprintf("✗ Sync failed: %v", r.Err)
	}
	if r.Succeeded() == 0 && r.Failed() == 0 && r.Skipped == 0 {
		return fmt.Sprintf("✓ All %d entries checked", r.Checked)
	}
	msg := fmt.Sprintf("✓ Synced/Updated %d entries", r.Succeeded())
	if r.Failed() > 0 {
		msg += fmt.Sprintf(" (%d failed)", r.Failed())
	}
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	return msg
}

// HealthSyncService reconciles local entries with an external health store.
type HealthSyncService struct {
	entries     EntryRepository
	store       HealthStore
	recorder    SyncRecorder
	windowDays  int
	concurrency int
	now         func() time.Time
}

// HealthSyncOption configures a HealthSyncService.
type HealthSyncOption func(*HealthSyncService)

// WithSyncWindow sets how many days back SyncRecent looks.
func WithSyncWindow(days int) HealthSyncOption {
	return func(s *HealthSyncService) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithSyncConcurrency bounds the number of in-flight store calls per phase.
func WithSyncConcurrency(n int) HealthSyncOption {
	return func(s *HealthSyncService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSyncRecorder attaches a recorder for operation outcomes.
func WithSyncRecorder(r SyncRecorder) HealthSyncOption {
	return func(s *HealthSyncService) {
		s.recorder = r
	}
}

// WithClock overrides the clock used to compute the sync window.
func WithClock(now func() time.Time) HealthSyncOption {
	return func(s *HealthSyncService) {
		s.now = now
	}
}

// NewHealthSyncService creates a new HealthSyncService instance
func NewHealthSyncService(entries EntryRepository, store HealthStore, opts ...HealthSyncOption) *HealthSyncService {
	s := &HealthSyncService{
		entries:     entries,
		store:       store,
		windowDays:  DefaultSyncWindowDays,
		concurrency: DefaultSyncConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncRecent reconciles every entry dated within the sync window ending today.
func (s *HealthSyncService) SyncRecent(ctx context.Context) *SyncResult {
	today := model.DateOf(s.now())
	start := today.AddDays(-s.windowDays)

	entries, err := s.entries.ListRange(ctx, start, today)
	if err != nil {
		result := &SyncResult{Err: fmt.Errorf("load entries: %w", err)}
		s.record(result)
		return result
	}
	log.Printf("[HealthSync] Found %d entries between %s and %s", len(entries), start, today)
	return s.Reconcile(ctx, entries)
}

// Reconcile pushes the given entries to the store in three phases:
// classify, insert, update. Per-entry failures are counted, never returned.
func (s *HealthSyncService) Reconcile(ctx context.Context, entries []model.FoodEntry) *SyncResult {
	result := &SyncResult{Checked: len(entries)}
	if len(entries) == 0 {
		s.record(result)
		return result
	}
	if err := s.store.Ping(ctx); err != nil {
		log.Printf("[HealthSync] Store unreachable, aborting batch: %v", err)
		result.Err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		s.record(result)
		return result
	}

	local := make([]model.FoodEntry, len(entries))
	copy(local, entries)

	actions, stale := s.classify(ctx, local)

	var toInsert, toUpdate []int
	for i, action := range actions {
		switch action {
		case ActionInsert:
			toInsert = append(toInsert, i)
		case ActionUpdate:
			toUpdate = append(toUpdate, i)
		}
	}
	log.Printf("[HealthSync] To insert: %d, to update: %d", len(toInsert), len(toUpdate))

	inserted := s.runPhase(ctx, toInsert, func(ctx context.Context, i int) bool {
		return s.insert(ctx, &local[i], stale[i])
	})
	updated := s.runPhase(ctx, toUpdate, func(ctx context.Context, i int) bool {
		return s.update(ctx, &local[i])
	})

	for _, i := range toInsert {
		switch inserted[i] {
		case phaseOK:
			result.Inserted++
			if stale[i] {
				result.Reinserted++
			}
		case phaseFailed:
			result.InsertFailed++
		case phaseSkipped:
			result.Skipped++
		}
	}
	for _, i := range toUpdate {
		switch updated[i] {
		case phaseOK:
			result.Updated++
		case phaseFailed:
			result.UpdateFailed++
		case phaseSkipped:
			result.Skipped++
		}
	}

	result.Entries = local
	s.record(result)
	log.Printf("[HealthSync] %s", result.Message())
	return result
}

// classify decides insert or update for every entry. An entry without an
// external id is never checked for existence. An entry whose id the store
// no longer knows, or whose existence cannot be confirmed, is re-inserted.
func (s *HealthSyncService) classify(ctx context.Context, entries []model.FoodEntry) ([]SyncAction, []bool) {
	actions := make([]SyncAction, len(entries))
	stale := make([]bool, len(entries))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range entries {
		externalID, synced := entries[i].Sync.ExternalID()
		if !synced {
			actions[i] = ActionInsert
			continue
		}
		g.Go(func() error {
			exists, err := s.store.Exists(ctx, externalID)
			s.recordOp(OpExists, err == nil)
			if err != nil {
				log.Printf("[HealthSync] Existence check for %s failed, will re-insert: %v", externalID, err)
			}
			if err == nil && exists {
				actions[i] = ActionUpdate
				return nil
			}
			actions[i] = ActionInsert
			stale[i] = true
			return nil
		})
	}
	_ = g.Wait()
	return actions, stale
}

func (s *HealthSyncService) insert(ctx context.Context, entry *model.FoodEntry, stale bool) bool {
	if stale {
		entry.Sync = model.Unsynced()
	}
	externalID, err := s.store.Create(ctx, *entry)
	if err == nil && externalID == "" {
		err = errors.New("no record id returned")
	}
	s.recordOp(OpCreate, err == nil)
	if err != nil {
		log.Printf("[HealthSync] Insert of %q (entry %d) failed: %v", entry.Name, entry.ID, err)
		if stale {
			// Drop the superseded id so the stored row reads as never synced.
			if uerr := s.entries.SetSyncState(ctx, entry.ID, entry.Sync); uerr != nil {
				log.Printf("[HealthSync] Failed to clear stale id on entry %d: %v", entry.ID, uerr)
			}
		}
		return false
	}

	entry.Sync = model.Synced(externalID)
	if err := s.entries.SetSyncState(ctx, entry.ID, entry.Sync); err != nil {
		log.Printf("[HealthSync] Inserted %s but failed to store it on entry %d: %v", externalID, entry.ID, err)
	}
	return true
}

func (s *HealthSyncService) update(ctx context.Context, entry *model.FoodEntry) bool {
	externalID, _ := entry.Sync.ExternalID()
	err := s.store.Update(ctx, externalID, *entry)
	s.recordOp(OpUpdate, err == nil)
	if err != nil {
		log.Printf("[HealthSync] Update of %s (entry %d) failed: %v", externalID, entry.ID, err)
		return false
	}
	return true
}

type phaseOutcome int

const (
	phaseNone phaseOutcome = iota
	phaseOK
	phaseFailed
	phaseSkipped
)

// runPhase applies fn to the given indices with bounded concurrency and
// waits for all of them. Indices not yet started when ctx is done are
// marked skipped.
func (s *HealthSyncService) runPhase(ctx context.Context, indices []int, fn func(context.Context, int) bool) map[int]phaseOutcome {
	outcomes := make([]phaseOutcome, len(indices))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for n, i := range indices {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[n] = phaseSkipped
				return nil
			}
			if fn(ctx, i) {
				outcomes[n] = phaseOK
			} else {
				outcomes[n] = phaseFailed
			}
			return nil
		})
	}
	_ = g.Wait()

	byIndex := make(map[int]phaseOutcome, len(indices))
	for n, i := range indices {
		byIndex[i] = outcomes[n]
	}
	return byIndex
}

func (s *HealthSyncService) recordOp(op string, ok bool) {
	if s.recorder != nil {
		s.recorder.RecordOperation(op, ok)
	}
}

func (s *HealthSyncService) record(result *SyncResult) {
	if s.recorder != nil {
		s.recorder.RecordBatch(result)
	}
}
