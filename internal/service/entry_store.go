package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodtracking/backend/internal/model"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("entry not found")

// GormEntryRepository stores entries with gorm.
type GormEntryRepository struct {
	db *gorm.DB
}

// Ensure GormEntryRepository implements EntryRepository
var _ EntryRepository = (*GormEntryRepository)(nil)

// NewGormEntryRepository creates a new GormEntryRepository instance
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// Insert stores a new entry and returns its id. A non-zero id replaces the
// existing row.
func (r *GormEntryRepository) Insert(ctx context.Context, entry *model.FoodEntry) (uint, error) {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return entry.ID, nil
}

// Update writes every column of an existing entry.
func (r *GormEntryRepository) Update(ctx context.Context, entry *model.FoodEntry) error {
	if entry.ID == 0 {
		return fmt.Errorf("update entry: %w", ErrEntryNotFound)
	}
	res := r.db.WithContext(ctx).Model(&model.FoodEntry{ID: entry.ID}).Select("*").Omit("created_at").Updates(entry)
	if res.Error != nil {
		return fmt.Errorf("update entry %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update entry %d: %w", entry.ID, ErrEntryNotFound)
	}
	return nil
}

// Delete removes an entry by id.
func (r *GormEntryRepository) Delete(ctx context.Context, entry *model.FoodEntry) error {
	res := r.db.WithContext(ctx).Delete(&model.FoodEntry{}, entry.ID)
	if res.Error != nil {
		return fmt.Errorf("delete entry %d: %w", entry.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete entry %d: %w", entry.ID, ErrEntryNotFound)
	}
	return nil
}

// SetSyncState writes the external sync id alone so it never overwrites
// fields edited while a health store call was in flight.
func (r *GormEntryRepository) SetSyncState(ctx context.Context, id uint, state model.SyncState) error {
	res := r.db.WithContext(ctx).
		Model(&model.FoodEntry{ID: id}).
		Update("external_sync_id", state)
	if res.Error != nil {
		return fmt.Errorf("set sync state of entry %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set sync state of entry %d: %w", id, ErrEntryNotFound)
	}
	return nil
}

// Get retrieves an entry by id
func (r *GormEntryRepository) Get(ctx context.Context, id uint) (*model.FoodEntry, error) {
	var entry model.FoodEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListForDate returns a day's entries, newest first.
func (r *GormEntryRepository) ListForDate(ctx context.Context, date model.Date) ([]model.FoodEntry, error) {
	var entries []model.FoodEntry
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}

// ListRange returns entries with start <= date <= end, newest first.
func (r *GormEntryRepository) ListRange(ctx context.Context, start, end model.Date) ([]model.FoodEntry, error) {
	var entries []model.FoodEntry
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}

// ListAll returns every entry ordered by date then timestamp, newest first.
func (r *GormEntryRepository) ListAll(ctx context.Context) ([]model.FoodEntry, error) {
	var entries []model.FoodEntry
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}
