package types

import (
	"github.com/pageza/foodtracking/backend/internal/model"
)

// CreateEntryRequest represents the request body for logging a food entry.
// Date and Timestamp default to now when empty.
type CreateEntryRequest struct {
	Name        string       `json:"name" binding:"required"`
	Emoji       string       `json:"emoji"`
	Calories    int          `json:"calories"`
	Fats        float64      `json:"fats"`
	Proteins    float64      `json:"proteins"`
	Carbs       float64      `json:"carbs"`
	WeightGrams int          `json:"weight_grams"`
	Date        *model.Date  `json:"date"`
	Timestamp   int64        `json:"timestamp"`
	Source      model.Source `json:"source"`
	ImageURI    *string      `json:"image_uri"`
	SyncNow     bool         `json:"sync_now"`
}

// UpdateEntryRequest represents the request body for editing an entry.
type UpdateEntryRequest struct {
	Name        string      `json:"name" binding:"required"`
	Emoji       string      `json:"emoji"`
	Calories    int         `json:"calories"`
	Fats        float64     `json:"fats"`
	Proteins    float64     `json:"proteins"`
	Carbs       float64     `json:"carbs"`
	WeightGrams int         `json:"weight_grams"`
	Date        *model.Date `json:"date"`
}

// UpdateWeightRequest rescales an entry to a new portion weight.
type UpdateWeightRequest struct {
	WeightGrams int `json:"weight_grams" binding:"required"`
}

// ToggleFavoriteRequest either references a stored entry or carries the
// nutrition snapshot inline.
type ToggleFavoriteRequest struct {
	EntryID     uint    `json:"entry_id"`
	Name        string  `json:"name"`
	Emoji       string  `json:"emoji"`
	Calories    int     `json:"calories"`
	Fats        float64 `json:"fats"`
	Proteins    float64 `json:"proteins"`
	Carbs       float64 `json:"carbs"`
	WeightGrams int     `json:"weight_grams"`
}

// LogFavoriteRequest logs a favorite onto a day.
type LogFavoriteRequest struct {
	Date *model.Date `json:"date"`
}

// UpdateProfileRequest carries the physical profile used for goal calculation.
type UpdateProfileRequest struct {
	Age            int     `json:"age" binding:"required"`
	WeightKg       float64 `json:"weight_kg" binding:"required"`
	TargetWeightKg float64 `json:"target_weight_kg" binding:"required"`
	WeeksToGoal    int     `json:"weeks_to_goal" binding:"required"`
	IsMale         bool    `json:"is_male"`
	ActivityLevel  string  `json:"activity_level" binding:"required"`
}

// TokenRequest asks for a bearer token for a client.
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
}

// SyncResponse is returned by the sync endpoint.
type SyncResponse struct {
	Message      string `json:"message"`
	Checked      int    `json:"checked"`
	Inserted     int    `json:"inserted"`
	Reinserted   int    `json:"reinserted"`
	Updated      int    `json:"updated"`
	InsertFailed int    `json:"insert_failed"`
	UpdateFailed int    `json:"update_failed"`
	Skipped      int    `json:"skipped"`
	Error        string `json:"error,omitempty"`
}
