package model

import (
	"strings"
	"time"
)

// FavoriteFood is a named nutrition template snapshotted from an entry.
type FavoriteFood struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Emoji     string    `gorm:"size:32;not null" json:"emoji"`
	Nutrition `gorm:"embedded"`
}

func (FavoriteFood) TableName() string {
	return "favorite_foods"
}

// FavoriteFromEntry snapshots the entry's current nutrition, emoji and weight.
func FavoriteFromEntry(entry FoodEntry) FavoriteFood {
	return FavoriteFood{
		Name:      entry.Name,
		Emoji:     entry.Emoji,
		Nutrition: entry.Nutrition,
	}
}

// ToEntry builds a new, unsaved entry from the template. A template saved
// without a weight logs at DefaultWeightGrams.
func (f FavoriteFood) ToEntry(date Date, timestamp time.Time) FoodEntry {
	n := f.Nutrition
	if n.WeightGrams == 0 {
		n.WeightGrams = DefaultWeightGrams
	}
	n.WeightGrams = ClampWeight(n.WeightGrams)
	return FoodEntry{
		Name:      strings.TrimSpace(f.Name),
		Emoji:     NormalizeEmoji(f.Emoji),
		Nutrition: n,
		Date:      date,
		Timestamp: timestamp,
		Source:    SourceFavorite,
	}
}
