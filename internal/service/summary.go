package service

import (
	"sort"

	"github.com/pageza/foodtracking/backend/internal/model"
)

// DayHistory is one diary day as shown in the history view.
type DayHistory struct {
	Date    model.Date         `json:"date"`
	Entries []model.FoodEntry  `json:"entries"`
	Summary model.DailySummary `json:"summary"`
}

// Progress holds the clamped progress ratios against the daily limits.
type Progress struct {
	Calories float64 `json:"calories"`
	Fats     float64 `json:"fats"`
	Proteins float64 `json:"proteins"`
	Carbs    float64 `json:"carbs"`
}

// Aggregate sums the entries logged on date. Entries for other days are ignored.
func Aggregate(entries []model.FoodEntry, date model.Date) model.DailySummary {
	var summary model.DailySummary
	for _, e := range entries {
		if e.Date.Equal(date) {
			summary.Add(e.Nutrition)
		}
	}
	return summary
}

// Ratio returns total/goal clamped to [0, 1]. A non-positive goal yields 0.
func Ratio(total, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return clamp(total/goal, 0, 1)
}

// ProgressAgainst computes progress ring values for a summary.
func ProgressAgainst(s model.DailySummary, limits model.DailyLimits) Progress {
	return Progress{
		Calories: Ratio(float64(s.TotalCalories), float64(limits.Calories)),
		Fats:     Ratio(s.TotalFats, limits.Fats),
		Proteins: Ratio(s.TotalProteins, limits.Proteins),
		Carbs:    Ratio(s.TotalCarbs, limits.Carbs),
	}
}

// GroupByDate groups entries per day, newest day first, and orders each
// day's entries by timestamp, newest first.
func GroupByDate(entries []model.FoodEntry) []DayHistory {
	byDate := make(map[string]*DayHistory)
	for _, e := range entries {
		key := e.Date.String()
		day, ok := byDate[key]
		if !ok {
			day = &DayHistory{Date: e.Date}
			byDate[key] = day
		}
		day.Entries = append(day.Entries, e)
		day.Summary.Add(e.Nutrition)
	}

	history := make([]DayHistory, 0, len(byDate))
	for _, day := range byDate {
		sort.SliceStable(day.Entries, func(i, j int) bool {
			return day.Entries[i].Timestamp.After(day.Entries[j].Timestamp)
		})
		history = append(history, *day)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date.Time)
	})
	return history
}
