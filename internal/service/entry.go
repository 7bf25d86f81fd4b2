package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
)

var ErrInvalidEntry = errors.New("invalid entry")

// DeleteOutcome reports a local delete and the best-effort remote delete
// that followed it.
type DeleteOutcome struct {
	Entry         model.FoodEntry `json:"entry"`
	RemoteDeleted bool            `json:"remote_deleted"`
	RemoteError   string          `json:"remote_error,omitempty"`
}

// EntryService handles diary entry operations
type EntryService struct {
	entries EntryRepository
	health  HealthStore
	now     func() time.Time
}

// Ensure EntryService implements IEntryService
var _ IEntryService = (*EntryService)(nil)

// NewEntryService creates a new EntryService instance. health may be nil
// when no health store is configured.
func NewEntryService(entries EntryRepository, health HealthStore) *EntryService {
	return &EntryService{
		entries: entries,
		health:  health,
		now:     time.Now,
	}
}

// Create validates and stores a new entry. With syncNow set the entry is
// pushed to the health store right away; a failed push leaves it unsynced
// for the next reconciliation.
func (s *EntryService) Create(ctx context.Context, entry model.FoodEntry, syncNow bool) (*model.FoodEntry, error) {
	entry.ID = 0
	entry.Sync = model.Unsynced()
	if err := s.prepare(&entry); err != nil {
		return nil, err
	}
	if _, err := s.entries.Insert(ctx, &entry); err != nil {
		return nil, err
	}

	if syncNow && s.health != nil {
		externalID, err := s.health.Create(ctx, entry)
		if err == nil && externalID == "" {
			err = errors.New("no record id returned")
		}
		if err != nil {
			log.Printf("[EntryService] Immediate sync of entry %d failed: %v", entry.ID, err)
			return &entry, nil
		}
		entry.Sync = model.Synced(externalID)
		if err := s.entries.SetSyncState(ctx, entry.ID, entry.Sync); err != nil {
			log.Printf("[EntryService] Failed to store external id for entry %d: %v", entry.ID, err)
			entry.Sync = model.Unsynced()
		}
	}
	return &entry, nil
}

// Get retrieves an entry by id
func (s *EntryService) Get(ctx context.Context, id uint) (*model.FoodEntry, error) {
	return s.entries.Get(ctx, id)
}

// Update replaces an entry's editable fields. The sync state is kept from
// the stored row so clients cannot forge external ids.
func (s *EntryService) Update(ctx context.Context, entry model.FoodEntry) (*model.FoodEntry, error) {
	existing, err := s.entries.Get(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	entry.Sync = existing.Sync
	entry.CreatedAt = existing.CreatedAt
	if entry.Timestamp.IsZero() {
		entry.Timestamp = existing.Timestamp
	}
	if entry.Date.IsZero() {
		entry.Date = existing.Date
	}
	if entry.Source == "" {
		entry.Source = existing.Source
	}
	if entry.ImageURI == nil {
		entry.ImageURI = existing.ImageURI
	}
	if err := s.prepare(&entry); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateWeight rescales an entry to a new portion weight, clamped to 1 g.
func (s *EntryService) UpdateWeight(ctx context.Context, id uint, weightGrams int) (*model.FoodEntry, error) {
	existing, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	scaled := existing.ScaledTo(model.ClampWeight(weightGrams))
	if err := s.entries.Update(ctx, &scaled); err != nil {
		return nil, err
	}
	return &scaled, nil
}

// Delete removes an entry locally, then deletes its health store record if
// it has one. The local delete stands even when the remote delete fails.
func (s *EntryService) Delete(ctx context.Context, id uint) (*DeleteOutcome, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Delete(ctx, entry); err != nil {
		return nil, err
	}

	outcome := &DeleteOutcome{Entry: *entry}
	externalID, synced := entry.Sync.ExternalID()
	if !synced || s.health == nil {
		return outcome, nil
	}
	if err := s.health.Delete(ctx, externalID); err != nil {
		log.Printf("[EntryService] Remote delete of %s for entry %d failed: %v", externalID, id, err)
		outcome.RemoteError = err.Error()
		return outcome, nil
	}
	outcome.RemoteDeleted = true
	return outcome, nil
}

// Restore re-creates a deleted entry as a fresh row without a sync id.
func (s *EntryService) Restore(ctx context.Context, entry model.FoodEntry) (*model.FoodEntry, error) {
	restored := entry.RestoreCopy()
	if err := s.prepare(&restored); err != nil {
		return nil, err
	}
	if _, err := s.entries.Insert(ctx, &restored); err != nil {
		return nil, err
	}
	return &restored, nil
}

// ListForDate returns a day's entries, newest first.
func (s *EntryService) ListForDate(ctx context.Context, date model.Date) ([]model.FoodEntry, error) {
	return s.entries.ListForDate(ctx, date)
}

// Summary aggregates a day's entries.
func (s *EntryService) Summary(ctx context.Context, date model.Date) (model.DailySummary, error) {
	entries, err := s.entries.ListForDate(ctx, date)
	if err != nil {
		return model.DailySummary{}, err
	}
	return Aggregate(entries, date), nil
}

// History groups every entry by day.
func (s *EntryService) History(ctx context.Context) ([]DayHistory, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByDate(entries), nil
}

func (s *EntryService) prepare(entry *model.FoodEntry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if entry.Calories < 0 || entry.Fats < 0 || entry.Proteins < 0 || entry.Carbs < 0 {
		return fmt.Errorf("%w: nutrition values must not be negative", ErrInvalidEntry)
	}
	if entry.WeightGrams == 0 {
		entry.WeightGrams = model.DefaultWeightGrams
	}
	entry.WeightGrams = model.ClampWeight(entry.WeightGrams)
	entry.Emoji = model.NormalizeEmoji(entry.Emoji)
	if entry.Source == "" {
		entry.Source = model.SourceManual
	}
	if !entry.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidEntry, entry.Source)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Date.IsZero() {
		entry.Date = model.DateOf(entry.Timestamp)
	}
	return nil
}
