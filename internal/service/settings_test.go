package service

import (
	"context"
	"testing"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Defaults(t *testing.T) {
	svc := NewSettingsService(NewMemoryPreferenceStore())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DefaultDailyLimits(), settings.Limits)
	assert.Equal(t, model.DefaultPhysicalProfile(), settings.Profile)
	assert.Equal(t, 2633, settings.TDEE)
	assert.Equal(t, 688, settings.DailyDeficit)
	assert.True(t, settings.IsLosingWeight)
	assert.False(t, settings.OnboardingComplete)
}

func TestSettingsService_UpdateProfileRecalculates(t *testing.T) {
	prefs := NewMemoryPreferenceStore()
	svc := NewSettingsService(prefs)
	ctx := context.Background()

	profile := model.PhysicalProfile{Age: 28, WeightKg: 62, TargetWeightKg: 65, WeeksToGoal: 12, IsMale: false, Activity: model.ActivityActive}
	goal, err := svc.UpdateProfile(ctx, profile)
	require.NoError(t, err)

	expected := GoalProfileFor(profile)
	assert.Equal(t, expected, *goal)
	assert.False(t, goal.IsLosingWeight)

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected.Limits, settings.Limits)
	assert.Equal(t, profile, settings.Profile)
	assert.True(t, settings.OnboardingComplete)
	assert.False(t, settings.IsLosingWeight)
}

func TestSettingsService_UpdateProfileRejectsInvalid(t *testing.T) {
	prefs := NewMemoryPreferenceStore()
	svc := NewSettingsService(prefs)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, model.PhysicalProfile{Age: 30, WeightKg: 70, TargetWeightKg: 70, WeeksToGoal: 0, Activity: model.ActivityLight})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, saved, err := prefs.LoadProfile(ctx)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSettingsService_SaveLimitsFallsBackPerField(t *testing.T) {
	svc := NewSettingsService(NewMemoryPreferenceStore())
	ctx := context.Background()

	saved, err := svc.SaveLimits(ctx, model.DailyLimits{Calories: 1800, Fats: 0, Proteins: 140, Carbs: -3})
	require.NoError(t, err)
	assert.Equal(t, model.DailyLimits{Calories: 1800, Fats: 65, Proteins: 140, Carbs: 300}, saved)

	limits, err := svc.Limits(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, limits)
}
