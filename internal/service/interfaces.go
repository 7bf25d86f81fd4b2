package service

import (
	"context"

	"github.com/pageza/foodtracking/backend/internal/model"
)

// HealthStore is the capability an external health-data store adapter must
// provide. Health Connect and HealthKit bridges each supply their own
// implementation. Every method reports failure through its error; none panic.
type HealthStore interface {
	// Ping reports whether the store is reachable at all.
	Ping(ctx context.Context) error
	Exists(ctx context.Context, externalID string) (bool, error)
	Create(ctx context.Context, entry model.FoodEntry) (string, error)
	Update(ctx context.Context, externalID string, entry model.FoodEntry) error
	Delete(ctx context.Context, externalID string) error
}

// EntryRepository is the local persistence the core relies on.
type EntryRepository interface {
	Insert(ctx context.Context, entry *model.FoodEntry) (uint, error)
	Update(ctx context.Context, entry *model.FoodEntry) error
	// SetSyncState writes only the external sync id of an entry.
	SetSyncState(ctx context.Context, id uint, state model.SyncState) error
	Delete(ctx context.Context, entry *model.FoodEntry) error
	Get(ctx context.Context, id uint) (*model.FoodEntry, error)
	ListForDate(ctx context.Context, date model.Date) ([]model.FoodEntry, error)
	ListRange(ctx context.Context, start, end model.Date) ([]model.FoodEntry, error)
	ListAll(ctx context.Context) ([]model.FoodEntry, error)
}

// FavoriteRepository persists favorite templates keyed by name.
type FavoriteRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (*model.FavoriteFood, error)
	Upsert(ctx context.Context, favorite *model.FavoriteFood) error
	DeleteByName(ctx context.Context, name string) error
	List(ctx context.Context) ([]model.FavoriteFood, error)
}

// PreferenceStore persists the user's goals and profile.
type PreferenceStore interface {
	LoadLimits(ctx context.Context) (model.DailyLimits, bool, error)
	SaveLimits(ctx context.Context, limits model.DailyLimits) error
	LoadProfile(ctx context.Context) (model.PhysicalProfile, bool, error)
	SaveProfile(ctx context.Context, profile model.PhysicalProfile) error
	OnboardingComplete(ctx context.Context) (bool, error)
	SetOnboardingComplete(ctx context.Context) error
}

// SyncRecorder receives reconciliation outcomes, typically for metrics.
type SyncRecorder interface {
	RecordOperation(op string, ok bool)
	RecordBatch(result *SyncResult)
}

// IEntryService defines the interface for diary entry operations
type IEntryService interface {
	Create(ctx context.Context, entry model.FoodEntry, syncNow bool) (*model.FoodEntry, error)
	Get(ctx context.Context, id uint) (*model.FoodEntry, error)
	Update(ctx context.Context, entry model.FoodEntry) (*model.FoodEntry, error)
	UpdateWeight(ctx context.Context, id uint, weightGrams int) (*model.FoodEntry, error)
	Delete(ctx context.Context, id uint) (*DeleteOutcome, error)
	Restore(ctx context.Context, entry model.FoodEntry) (*model.FoodEntry, error)
	ListForDate(ctx context.Context, date model.Date) ([]model.FoodEntry, error)
	Summary(ctx context.Context, date model.Date) (model.DailySummary, error)
	History(ctx context.Context) ([]DayHistory, error)
}

// IFavoriteService defines the interface for favorites operations
type IFavoriteService interface {
	IsFavorite(ctx context.Context, name string) (bool, error)
	Toggle(ctx context.Context, entry model.FoodEntry) (bool, error)
	ToggleEntry(ctx context.Context, entryID uint) (bool, error)
	Remove(ctx context.Context, name string) (*model.FavoriteFood, error)
	Restore(ctx context.Context, snapshot model.FavoriteFood) error
	List(ctx context.Context) ([]model.FavoriteFood, error)
	Log(ctx context.Context, name string, date model.Date) (*model.FoodEntry, error)
}
