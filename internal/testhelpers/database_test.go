package testhelpers

import (
	"testing"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDatabaseIsolated(t *testing.T) {
	first := SetupTestDatabase(t)
	second := SetupTestDatabase(t)

	entry := Entry("Apple", 52)
	require.NoError(t, first.Create(&entry).Error)

	var count int64
	require.NoError(t, second.Model(&model.FoodEntry{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, first.Model(&model.FoodEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
