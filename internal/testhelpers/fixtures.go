package testhelpers

import (
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
)

// Day is the fixed diary day fixtures are logged on.
var Day = model.NewDate(2024, time.March, 4)

// NoonOn returns midday UTC on the given day.
func NoonOn(d model.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

// Entry builds an unsaved entry on Day.
func Entry(name string, calories int) model.FoodEntry {
	return model.FoodEntry{
		Name:  name,
		Emoji: "🍎",
		Nutrition: model.Nutrition{
			Calories:    calories,
			Fats:        1.5,
			Proteins:    2.5,
			Carbs:       10,
			WeightGrams: model.DefaultWeightGrams,
		},
		Date:      Day,
		Timestamp: NoonOn(Day),
		Source:    model.SourceManual,
	}
}
