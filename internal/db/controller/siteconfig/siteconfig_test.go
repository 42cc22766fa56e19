package siteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.SiteConfig{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)

	t.Run("unseeded config is reported", func(t *testing.T) {
		_, err := Get(db)
		assert.ErrorIs(t, err, ErrNotSeeded)
	})

	t.Run("seed inserts the defaults once", func(t *testing.T) {
		require.NoError(t, Seed(db))
		require.NoError(t, Seed(db)) // idempotent

		var count int64
		require.NoError(t, db.Model(&models.SiteConfig{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		cfg, err := Get(db)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.PageSize)
		assert.False(t, cfg.MaintenanceActive)
	})
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(db))

	pageSize := 25
	message := "back soon"
	active := true

	updated, err := Apply(db, Update{
		PageSize:           &pageSize,
		MaintenanceActive:  &active,
		MaintenanceMessage: &message,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.PageSize)
	assert.True(t, updated.MaintenanceActive)
	assert.Equal(t, "back soon", updated.MaintenanceMessage)

	t.Run("nil fields keep their value", func(t *testing.T) {
		contact := "portal@example.com"

		updated, err := Apply(db, Update{ContactInfo: &contact})
		require.NoError(t, err)
		assert.Equal(t, "portal@example.com", updated.ContactInfo)
		assert.Equal(t, 25, updated.PageSize)
		assert.True(t, updated.MaintenanceActive)
	})

	t.Run("maintenance flag is readable", func(t *testing.T) {
		active, err := MaintenanceActive(db)
		require.NoError(t, err)
		assert.True(t, active)
	})
}
