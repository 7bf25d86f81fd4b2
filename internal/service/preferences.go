package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	prefLimitsKey     = "limits"
	prefProfileKey    = "profile"
	prefOnboardingKey = "onboarding_complete"
)

// RedisPreferenceStore keeps settings as JSON values under a key prefix.
type RedisPreferenceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisPreferenceStore creates a new RedisPreferenceStore instance
func NewRedisPreferenceStore(client *redis.Client, prefix string) *RedisPreferenceStore {
	if prefix == "" {
		prefix = "foodtracking:prefs"
	}
	return &RedisPreferenceStore{client: client, prefix: prefix}
}

var _ PreferenceStore = (*RedisPreferenceStore)(nil)

func (s *RedisPreferenceStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisPreferenceStore) load(ctx context.Context, name string, dst interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (s *RedisPreferenceStore) save(ctx context.Context, name string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.client.Set(ctx, s.key(name), raw, 0).Err()
}

func (s *RedisPreferenceStore) LoadLimits(ctx context.Context) (model.DailyLimits, bool, error) {
	var limits model.DailyLimits
	ok, err := s.load(ctx, prefLimitsKey, &limits)
	return limits, ok, err
}

func (s *RedisPreferenceStore) SaveLimits(ctx context.Context, limits model.DailyLimits) error {
	return s.save(ctx, prefLimitsKey, limits)
}

func (s *RedisPreferenceStore) LoadProfile(ctx context.Context) (model.PhysicalProfile, bool, error) {
	var profile model.PhysicalProfile
	ok, err := s.load(ctx, prefProfileKey, &profile)
	return profile, ok, err
}

func (s *RedisPreferenceStore) SaveProfile(ctx context.Context, profile model.PhysicalProfile) error {
	return s.save(ctx, prefProfileKey, profile)
}

func (s *RedisPreferenceStore) OnboardingComplete(ctx context.Context) (bool, error) {
	var done bool
	_, err := s.load(ctx, prefOnboardingKey, &done)
	return done, err
}

func (s *RedisPreferenceStore) SetOnboardingComplete(ctx context.Context) error {
	return s.save(ctx, prefOnboardingKey, true)
}

// MemoryPreferenceStore is an in-process PreferenceStore used when Redis is
// not configured.
type MemoryPreferenceStore struct {
	mu         sync.RWMutex
	limits     *model.DailyLimits
	profile    *model.PhysicalProfile
	onboarding bool
}

// NewMemoryPreferenceStore creates an empty MemoryPreferenceStore
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{}
}

var _ PreferenceStore = (*MemoryPreferenceStore)(nil)

func (s *MemoryPreferenceStore) LoadLimits(ctx context.Context) (model.DailyLimits, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.limits == nil {
		return model.DailyLimits{}, false, nil
	}
	return *s.limits, true, nil
}

func (s *MemoryPreferenceStore) SaveLimits(ctx context.Context, limits model.DailyLimits) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = &limits
	return nil
}

func (s *MemoryPreferenceStore) LoadProfile(ctx context.Context) (model.PhysicalProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return model.PhysicalProfile{}, false, nil
	}
	return *s.profile, true, nil
}

func (s *MemoryPreferenceStore) SaveProfile(ctx context.Context, profile model.PhysicalProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &profile
	return nil
}

func (s *MemoryPreferenceStore) OnboardingComplete(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboarding, nil
}

func (s *MemoryPreferenceStore) SetOnboardingComplete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboarding = true
	return nil
}
