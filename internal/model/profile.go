package model

import (
	"fmt"
	"strings"
)

// ActivityLevel is one of the five fixed activity tiers used for TDEE.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityLevels lists the tiers in ascending order.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

var activityLabels = map[ActivityLevel]string{
	ActivitySedentary:  "Sedentary (little/no exercise)",
	ActivityLight:      "Light (1-3 days/week)",
	ActivityModerate:   "Moderate (3-5 days/week)",
	ActivityActive:     "Active (6-7 days/week)",
	ActivityVeryActive: "Very Active (athlete)",
}

// Multiplier returns the TDEE multiplier, falling back to moderate for
// unknown levels.
func (a ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[a]; ok {
		return m
	}
	return activityMultipliers[ActivityModerate]
}

// Label returns a human readable description.
func (a ActivityLevel) Label() string {
	return activityLabels[a]
}

// ParseActivityLevel accepts a level name in any case.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := activityMultipliers[level]; !ok {
		return "", fmt.Errorf("unknown activity level %q", s)
	}
	return level, nil
}

// ActivityLevelAt maps a stored ordinal to a level, defaulting to moderate.
func ActivityLevelAt(index int) ActivityLevel {
	if index < 0 || index >= len(ActivityLevels) {
		return ActivityModerate
	}
	return ActivityLevels[index]
}

// PhysicalProfile is the user input for goal derivation.
type PhysicalProfile struct {
	Age            int           `json:"age"`
	WeightKg       float64       `json:"weight_kg"`
	TargetWeightKg float64       `json:"target_weight_kg"`
	WeeksToGoal    int           `json:"weeks_to_goal"`
	IsMale         bool          `json:"is_male"`
	Activity       ActivityLevel `json:"activity_level"`
}

// DefaultPhysicalProfile returns the profile assumed before onboarding.
func DefaultPhysicalProfile() PhysicalProfile {
	return PhysicalProfile{
		Age:            30,
		WeightKg:       75,
		TargetWeightKg: 70,
		WeeksToGoal:    8,
		IsMale:         true,
		Activity:       ActivityModerate,
	}
}

// IsLosingWeight reports whether the target is below the current weight.
func (p PhysicalProfile) IsLosingWeight() bool {
	return p.WeightKg > p.TargetWeightKg
}

// GoalProfile is the result of goal derivation: the daily targets plus the
// maintenance and deficit figures they were computed from.
type GoalProfile struct {
	TDEE           int         `json:"tdee"`
	DailyDeficit   float64     `json:"daily_deficit"`
	Limits         DailyLimits `json:"limits"`
	IsLosingWeight bool        `json:"is_losing_weight"`
}
