package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are seeded once at startup from the permission catalog and are not
// editable at runtime. Institution-scoped roles are INSTITUTION_OWNER,
// INSTITUTION_MANAGER and INSTITUTION_OPERATOR; SITE_ADMIN is only ever
// referenced through the site_admins table.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "SITE_ADMIN").
	Name string `gorm:"unique;size:64;not null"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
