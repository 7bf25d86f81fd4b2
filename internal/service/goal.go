package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/pageza/foodtracking/backend/internal/model"
)

const (
	estimatedHeightMaleCm   = 175.0
	estimatedHeightFemaleCm = 162.0
	kcalPerKgFat            = 7700.0
	minDailyCalories        = 1200.0
	maxDailyCalories        = 4000.0

	proteinShare       = 0.25
	carbsShare         = 0.45
	fatShare           = 0.30
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

var ErrInvalidProfile = errors.New("invalid physical profile")

// GoalBreakdown is the full output of a goal calculation.
type GoalBreakdown struct {
	BMR          float64 `json:"bmr"`
	TDEE         float64 `json:"tdee"`
	DailyDeficit float64 `json:"daily_deficit"`
	Calories     int     `json:"calories"`
	Proteins     int     `json:"proteins"`
	Carbs        int     `json:"carbs"`
	Fats         int     `json:"fats"`
}

// BMR estimates basal metabolic rate with the Mifflin-St Jeor equation.
// Height is not collected, so an average height per sex is assumed.
func BMR(p model.PhysicalProfile) float64 {
	height := estimatedHeightFemaleCm
	offset := -161.0
	if p.IsMale {
		height = estimatedHeightMaleCm
		offset = 5
	}
	return 10*p.WeightKg + 6.25*height - 5*float64(p.Age) + offset
}

// ComputeGoals derives maintenance calories, the daily deficit (negative for
// a surplus) and clamped calorie and macro targets from a profile.
func ComputeGoals(p model.PhysicalProfile) GoalBreakdown {
	bmr := BMR(p)
	tdee := bmr * p.Activity.Multiplier()

	var deficit float64
	if p.WeeksToGoal > 0 {
		weightDiff := p.WeightKg - p.TargetWeightKg
		deficit = weightDiff * kcalPerKgFat / float64(p.WeeksToGoal*7)
	}

	target := math.Round(clamp(tdee-deficit, minDailyCalories, maxDailyCalories))
	return GoalBreakdown{
		BMR:          bmr,
		TDEE:         tdee,
		DailyDeficit: deficit,
		Calories:     int(target),
		Proteins:     int(math.Round(target * proteinShare / kcalPerGramProtein)),
		Carbs:        int(math.Round(target * carbsShare / kcalPerGramCarbs)),
		Fats:         int(math.Round(target * fatShare / kcalPerGramFat)),
	}
}

// GoalProfileFor wraps ComputeGoals into the stored goal profile shape.
func GoalProfileFor(p model.PhysicalProfile) model.GoalProfile {
	g := ComputeGoals(p)
	return model.GoalProfile{
		TDEE:         int(math.Round(g.TDEE)),
		DailyDeficit: g.DailyDeficit,
		Limits: model.DailyLimits{
			Calories: g.Calories,
			Fats:     float64(g.Fats),
			Proteins: float64(g.Proteins),
			Carbs:    float64(g.Carbs),
		},
		IsLosingWeight: p.IsLosingWeight(),
	}
}

// ValidateProfile rejects profiles the settings screen would not accept.
func ValidateProfile(p model.PhysicalProfile) error {
	switch {
	case p.Age <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	case p.WeightKg <= 0 || p.TargetWeightKg <= 0:
		return fmt.Errorf("%w: weights must be positive", ErrInvalidProfile)
	case p.WeeksToGoal < 1:
		return fmt.Errorf("%w: weeks to goal must be at least 1", ErrInvalidProfile)
	}
	if _, err := model.ParseActivityLevel(string(p.Activity)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
