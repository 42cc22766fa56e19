// Package models contains database model definitions.
package models

import "time"

// SiteConfig holds the single row of site-wide settings.
type SiteConfig struct {
	// ID is the unique identifier for the config row.
	ID uint64 `gorm:"primaryKey"`
	// PageSize is the default listing page size.
	PageSize int `gorm:"not null"`
	// ContactInfo is the site-wide contact information shown in the portal.
	ContactInfo string `gorm:"size:256"`
	// MaintenanceActive gates the portal behind a maintenance notice.
	MaintenanceActive bool
	// MaintenanceMessage is shown while maintenance is active.
	MaintenanceMessage string `gorm:"size:512"`
	// CreatedAt is the timestamp when the config was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the config was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the SiteConfig model.
func (SiteConfig) TableName() string {
	return "site_config"
}

// DefaultSiteConfig returns the configuration seeded on first start.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		PageSize:           10,
		ContactInfo:        "",
		MaintenanceActive:  false,
		MaintenanceMessage: "",
	}
}
