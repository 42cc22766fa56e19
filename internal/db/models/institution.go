package models

import "time"

// Institution represents an institution that publishes services on the portal.
// Institution staff (owners, managers, operators) hold per-institution roles;
// end users submit service requests against the institution's services.
type Institution struct {
	// ID is the unique identifier for the institution.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique display name of the institution.
	Name string `gorm:"unique;size:100;not null"`
	// Information is a free-text description of the institution.
	Information string `gorm:"size:512"`
	// Address is the institution's street address.
	Address string `gorm:"size:255"`
	// Location is the institution's geographic location (lat,long or locality).
	Location string `gorm:"size:100"`
	// Web is the institution's website URL.
	Web string `gorm:"size:255"`
	// Keywords are comma-separated discovery keywords.
	Keywords string `gorm:"size:255"`
	// Email is the institution's contact email address.
	Email string `gorm:"size:255"`
	// DaysAndOpeningHours describes when the institution is open.
	DaysAndOpeningHours string `gorm:"size:255"`
	// Enabled indicates whether the institution is visible and accepting requests.
	Enabled bool
	// CreatedAt is the timestamp when the institution was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the institution was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Institution model.
func (Institution) TableName() string {
	return "institutions"
}
