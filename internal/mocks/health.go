package mocks

import (
	"context"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockHealthStore is a mock implementation of service.HealthStore
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHealthStore) Exists(ctx context.Context, externalID string) (bool, error) {
	args := m.Called(ctx, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHealthStore) Create(ctx context.Context, entry model.FoodEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockHealthStore) Update(ctx context.Context, externalID string, entry model.FoodEntry) error {
	args := m.Called(ctx, externalID, entry)
	return args.Error(0)
}

func (m *MockHealthStore) Delete(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}
