package model

import (
	"time"
)

// Source records how an entry was logged. It only drives iconography.
type Source string

const (
	SourcePhoto         Source = "PHOTO"
	SourceDescription   Source = "DESCRIPTION"
	SourceCatalogSearch Source = "SEARCH"
	SourceFavorite      Source = "FAVORITES"
	SourceManual        Source = "MANUAL"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourcePhoto, SourceDescription, SourceCatalogSearch, SourceFavorite, SourceManual:
		return true
	}
	return false
}

// FoodEntry is one logged food occurrence on a diary day.
type FoodEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Emoji     string    `gorm:"size:32;not null" json:"emoji"`
	Nutrition `gorm:"embedded"`
	Date      Date      `gorm:"type:date;not null;index" json:"date"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	ImageURI  *string   `gorm:"size:1024" json:"image_uri,omitempty"`
	Source    Source    `gorm:"size:20;not null;default:MANUAL" json:"source"`
	Sync      SyncState `gorm:"column:external_sync_id;size:255;index" json:"external_sync_id"`
}

func (FoodEntry) TableName() string {
	return "food_entries"
}

// ScaledTo returns a copy of the entry with its nutrition scaled to a new
// portion weight. Identity, date and sync state are untouched.
func (e FoodEntry) ScaledTo(newWeightGrams int) FoodEntry {
	e.Nutrition = e.Nutrition.ScaledTo(newWeightGrams)
	return e
}

// RestoreCopy returns the entry as it must be re-inserted after an undo:
// no local id and no external id.
func (e FoodEntry) RestoreCopy() FoodEntry {
	e.ID = 0
	e.CreatedAt = time.Time{}
	e.UpdatedAt = time.Time{}
	e.Sync = Unsynced()
	return e
}
