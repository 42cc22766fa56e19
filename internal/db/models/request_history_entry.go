package models

import "time"

// RequestHistoryEntry is an immutable audit record of one status transition
// of a service request. Exactly one entry is appended per accepted
// transition; entries are never updated or deleted, and their chronological
// order reconstructs the full status trajectory.
type RequestHistoryEntry struct {
	// ID is the unique identifier for the entry.
	ID uint64 `gorm:"primaryKey"`
	// ServiceRequestID is the request this entry belongs to.
	ServiceRequestID uint64 `gorm:"column:service_request_id;not null;index"`
	// Status is the status the request entered with this transition.
	Status RequestStatus `gorm:"type:varchar(20);not null"`
	// Observation is the free-text note recorded with the transition.
	Observation string `gorm:"size:512"`
	// ServiceRequest is the owning request; deleting it removes the history.
	ServiceRequest ServiceRequest `gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the transition was recorded.
	CreatedAt time.Time
}

// TableName specifies the database table name for the RequestHistoryEntry model.
func (RequestHistoryEntry) TableName() string {
	return "request_history"
}
