// Package siteconfig manages the single row of site-wide settings.
package siteconfig

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

var (
	// ErrNotSeeded is returned when no site config row exists.
	ErrNotSeeded = errors.New("site config not seeded")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Update carries the optional fields of a config update; nil fields keep
// their current value.
type Update struct {
	PageSize           *int
	ContactInfo        *string
	MaintenanceActive  *bool
	MaintenanceMessage *string
}

// Get returns the site config row.
func Get(db *gorm.DB) (*models.SiteConfig, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var cfg models.SiteConfig

	result := db.First(&cfg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotSeeded
		}

		return nil, result.Error
	}

	return &cfg, nil
}

// Apply updates the site config row with the non-nil fields of u.
func Apply(db *gorm.DB, u Update) (*models.SiteConfig, error) {
	cfg, err := Get(db)
	if err != nil {
		return nil, err
	}

	if u.PageSize != nil {
		cfg.PageSize = *u.PageSize
	}

	if u.ContactInfo != nil {
		cfg.ContactInfo = *u.ContactInfo
	}

	if u.MaintenanceActive != nil {
		cfg.MaintenanceActive = *u.MaintenanceActive
	}

	if u.MaintenanceMessage != nil {
		cfg.MaintenanceMessage = *u.MaintenanceMessage
	}

	if err := db.Save(cfg).Error; err != nil {
		return nil, err
	}

	return cfg, nil
}

// MaintenanceActive reports whether the portal is in maintenance mode.
func MaintenanceActive(db *gorm.DB) (bool, error) {
	cfg, err := Get(db)
	if err != nil {
		return false, err
	}

	return cfg.MaintenanceActive, nil
}

// Seed inserts the default config row when none exists.
func Seed(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64

	if err := db.Model(&models.SiteConfig{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	cfg := models.DefaultSiteConfig()

	return db.Create(&cfg).Error
}
