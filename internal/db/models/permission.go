package models

import "time"

// Permission represents a concrete (module, action) grant in the
// authorization system, stored under its external "{module}_{action}" name
// (e.g., "service_request_update"). The full set is seeded from the
// permission catalog's module/action validity table.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission name in "{module}_{action}" format.
	Name string `gorm:"unique;size:64;not null"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
