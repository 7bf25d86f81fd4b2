package service

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/pageza/foodtracking/backend/internal/model"
)

// Settings is the full settings state presented to clients.
type Settings struct {
	Limits             model.DailyLimits     `json:"limits"`
	Profile            model.PhysicalProfile `json:"profile"`
	TDEE               int                   `json:"tdee"`
	DailyDeficit       int                   `json:"daily_deficit"`
	IsLosingWeight     bool                  `json:"is_losing_weight"`
	OnboardingComplete bool                  `json:"onboarding_complete"`
}

// SettingsService reads and writes goals and profile through a PreferenceStore.
type SettingsService struct {
	prefs PreferenceStore
}

// NewSettingsService creates a new SettingsService instance
func NewSettingsService(prefs PreferenceStore) *SettingsService {
	return &SettingsService{prefs: prefs}
}

// Limits returns the stored daily limits or the defaults.
func (s *SettingsService) Limits(ctx context.Context) (model.DailyLimits, error) {
	limits, ok, err := s.prefs.LoadLimits(ctx)
	if err != nil {
		return model.DailyLimits{}, fmt.Errorf("load limits: %w", err)
	}
	if !ok {
		return model.DefaultDailyLimits(), nil
	}
	return limits, nil
}

// Profile returns the stored physical profile or the defaults.
func (s *SettingsService) Profile(ctx context.Context) (model.PhysicalProfile, error) {
	profile, ok, err := s.prefs.LoadProfile(ctx)
	if err != nil {
		return model.PhysicalProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if !ok {
		return model.DefaultPhysicalProfile(), nil
	}
	return profile, nil
}

// Get assembles the settings view.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	limits, err := s.Limits(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.prefs.OnboardingComplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("load onboarding state: %w", err)
	}
	goals := ComputeGoals(profile)
	return &Settings{
		Limits:             limits,
		Profile:            profile,
		TDEE:               int(math.Round(goals.TDEE)),
		DailyDeficit:       int(math.Abs(math.Round(goals.DailyDeficit))),
		IsLosingWeight:     profile.IsLosingWeight(),
		OnboardingComplete: done,
	}, nil
}

// SaveLimits stores manually edited limits. Values that are not positive
// fall back to the defaults.
func (s *SettingsService) SaveLimits(ctx context.Context, limits model.DailyLimits) (model.DailyLimits, error) {
	defaults := model.DefaultDailyLimits()
	if limits.Calories <= 0 {
		limits.Calories = defaults.Calories
	}
	if limits.Fats <= 0 {
		limits.Fats = defaults.Fats
	}
	if limits.Proteins <= 0 {
		limits.Proteins = defaults.Proteins
	}
	if limits.Carbs <= 0 {
		limits.Carbs = defaults.Carbs
	}
	if err := s.prefs.SaveLimits(ctx, limits); err != nil {
		return model.DailyLimits{}, fmt.Errorf("save limits: %w", err)
	}
	return limits, nil
}

// UpdateProfile validates and stores a profile, then recalculates and
// stores the derived limits. It also marks onboarding as complete.
func (s *SettingsService) UpdateProfile(ctx context.Context, profile model.PhysicalProfile) (*model.GoalProfile, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	goal := GoalProfileFor(profile)

	if err := s.prefs.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := s.prefs.SaveLimits(ctx, goal.Limits); err != nil {
		return nil, fmt.Errorf("save limits: %w", err)
	}
	if err := s.prefs.SetOnboardingComplete(ctx); err != nil {
		return nil, fmt.Errorf("save onboarding state: %w", err)
	}
	log.Printf("[SettingsService] Recalculated goals: %d kcal (tdee %d)", goal.Limits.Calories, goal.TDEE)
	return &goal, nil
}
