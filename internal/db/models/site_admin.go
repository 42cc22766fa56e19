package models

// SiteAdmin marks a user as a global, institution-independent administrator.
// A marked user holds the SITE_ADMIN role's permissions everywhere, never
// appears in per-institution member listings, and cannot be deleted while
// the row exists.
type SiteAdmin struct {
	// ID is the unique identifier for the marker row.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the marked user; one marker per user.
	UserID uint64 `gorm:"column:user_id;unique;not null"`
	// RoleID is the SITE_ADMIN role.
	RoleID uint `gorm:"column:role_id;not null"`
	// User is the marked user.
	User User `gorm:"foreignKey:UserID"`
	// Role is the SITE_ADMIN role.
	Role Role `gorm:"foreignKey:RoleID"`
}

// TableName specifies the database table name for the SiteAdmin model.
func (SiteAdmin) TableName() string {
	return "site_admins"
}
