package service

import (
	"testing"
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryOn(name string, d model.Date, hour int, n model.Nutrition) model.FoodEntry {
	return model.FoodEntry{
		Name:      name,
		Nutrition: n,
		Date:      d,
		Timestamp: time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC),
	}
}

func TestAggregate(t *testing.T) {
	day := model.NewDate(2024, time.March, 4)
	other := day.AddDays(-1)

	entries := []model.FoodEntry{
		entryOn("Eggs", day, 8, model.Nutrition{Calories: 155, Fats: 11, Proteins: 13, Carbs: 1.1, WeightGrams: 100}),
		entryOn("Rice", day, 13, model.Nutrition{Calories: 130, Fats: 0.3, Proteins: 2.7, Carbs: 28, WeightGrams: 100}),
		entryOn("Pizza", other, 20, model.Nutrition{Calories: 800, Fats: 30, Proteins: 30, Carbs: 90, WeightGrams: 300}),
	}

	s := Aggregate(entries, day)
	assert.Equal(t, 285, s.TotalCalories)
	assert.InDelta(t, 11.3, s.TotalFats, 1e-9)
	assert.InDelta(t, 15.7, s.TotalProteins, 1e-9)
	assert.InDelta(t, 29.1, s.TotalCarbs, 1e-9)

	assert.Equal(t, model.DailySummary{}, Aggregate(nil, day))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.5, Ratio(1000, 2000), 1e-9)
	assert.InDelta(t, 1.0, Ratio(2500, 2000), 1e-9)
	assert.Zero(t, Ratio(100, 0))
	assert.Zero(t, Ratio(100, -5))
	assert.Zero(t, Ratio(-10, 100))
}

func TestProgressAgainst(t *testing.T) {
	p := ProgressAgainst(
		model.DailySummary{TotalCalories: 1000, TotalFats: 65, TotalProteins: 100, TotalCarbs: 75},
		model.DefaultDailyLimits(),
	)
	assert.InDelta(t, 0.5, p.Calories, 1e-9)
	assert.InDelta(t, 1.0, p.Fats, 1e-9)
	assert.InDelta(t, 1.0, p.Proteins, 1e-9)
	assert.InDelta(t, 0.25, p.Carbs, 1e-9)
}

func TestGroupByDate(t *testing.T) {
	day := model.NewDate(2024, time.March, 4)
	n := model.Nutrition{Calories: 100, WeightGrams: 100}

	history := GroupByDate([]model.FoodEntry{
		entryOn("a", day.AddDays(-2), 9, n),
		entryOn("b", day, 8, n),
		entryOn("c", day, 19, n),
		entryOn("d", day.AddDays(-1), 12, n),
	})

	require.Len(t, history, 3)
	assert.True(t, history[0].Date.Equal(day))
	assert.True(t, history[1].Date.Equal(day.AddDays(-1)))
	assert.True(t, history[2].Date.Equal(day.AddDays(-2)))

	require.Len(t, history[0].Entries, 2)
	assert.Equal(t, "c", history[0].Entries[0].Name)
	assert.Equal(t, "b", history[0].Entries[1].Name)
	assert.Equal(t, 200, history[0].Summary.TotalCalories)
}
