package models

import "time"

// RequestNote is a free-text note attached to a service request by a user
// (staff or the requester). Notes are independent of the request's status
// and are removed only by cascade from their parents.
type RequestNote struct {
	// ID is the unique identifier for the note.
	ID uint64 `gorm:"primaryKey"`
	// Note is the free-text body.
	Note string `gorm:"size:512;not null"`
	// ServiceRequestID is the request this note belongs to.
	ServiceRequestID uint64 `gorm:"column:service_request_id;not null;index"`
	// UserID is the authoring user.
	UserID uint64 `gorm:"column:user_id;not null"`
	// ServiceRequest is the owning request; deleting it removes the note.
	ServiceRequest ServiceRequest `gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
	// User is the authoring user.
	User User `gorm:"foreignKey:UserID"`
	// CreatedAt is the timestamp when the note was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the note was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the RequestNote model.
func (RequestNote) TableName() string {
	return "request_notes"
}
