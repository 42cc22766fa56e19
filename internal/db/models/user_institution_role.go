package models

import "time"

// UserInstitutionRole binds one user to exactly one role within one
// institution. The composite unique index enforces the at-most-one-role-per-
// (user, institution) invariant at the store level; a new assignment for the
// same pair is a constraint violation, never an implicit upsert.
type UserInstitutionRole struct {
	// ID is the unique identifier for the assignment.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the ID of the assigned user.
	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:idx_user_institution"`
	// InstitutionID is the ID of the institution the role is scoped to.
	InstitutionID uint64 `gorm:"column:institution_id;not null;uniqueIndex:idx_user_institution"`
	// RoleID is the ID of the role held within the institution.
	RoleID uint `gorm:"column:role_id;not null"`
	// User is the assigned user; deleting the user removes the assignment.
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Institution is the scoping institution; deleting it removes the assignment.
	Institution Institution `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE"`
	// Role is the held role.
	Role Role `gorm:"foreignKey:RoleID"`
	// CreatedAt is the timestamp when the assignment was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the assignment was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the UserInstitutionRole model.
func (UserInstitutionRole) TableName() string {
	return "users_institutions_roles"
}
