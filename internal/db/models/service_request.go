package models

import "time"

// RequestStatus represents the current state of a service request.
type RequestStatus string

const (
	// StatusInProcess is the initial status, set at creation.
	StatusInProcess RequestStatus = "in_process"
	// StatusAccepted means the institution accepted the request.
	StatusAccepted RequestStatus = "accepted"
	// StatusRejected means the institution rejected the request.
	StatusRejected RequestStatus = "rejected"
	// StatusFinished means the requested work was completed.
	StatusFinished RequestStatus = "finished"
	// StatusCanceled means the request was canceled.
	StatusCanceled RequestStatus = "canceled"
)

// Closed reports whether the status counts as a closed one for the purposes
// of the closed_at timestamp. Statuses are otherwise mutually reachable;
// there is no forbidden-transition table.
func (s RequestStatus) Closed() bool {
	return s == StatusRejected || s == StatusFinished || s == StatusCanceled
}

// Valid reports whether s is one of the five known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusInProcess, StatusAccepted, StatusRejected, StatusFinished, StatusCanceled:
		return true
	}

	return false
}

// ServiceRequest represents one user's request for one institution's service.
// The owning institution is derived from the service at creation time and
// never supplied by the caller. Status changes go through the request
// controller's Transition, which also appends a RequestHistoryEntry; requests
// are never deleted on their own, only by cascade from their parents.
type ServiceRequest struct {
	// ID is the unique identifier for the request.
	ID uint64 `gorm:"primaryKey"`
	// Title is a short summary of the request.
	Title string `gorm:"size:32;not null"`
	// Description is the free-text body of the request.
	Description string `gorm:"size:512"`
	// Status is the current lifecycle status.
	Status RequestStatus `gorm:"type:varchar(20);not null"`
	// UserID is the requesting user; deleting the user removes the request.
	UserID uint64 `gorm:"column:user_id;not null"`
	// InstitutionID is the owning institution, derived from the service.
	InstitutionID uint64 `gorm:"column:institution_id;not null"`
	// ServiceID is the requested service; deleting it removes the request.
	ServiceID uint64 `gorm:"column:service_id;not null"`
	// User is the requesting user.
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Institution is the owning institution.
	Institution Institution `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE"`
	// Service is the requested service.
	Service Service `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the request was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the request was last updated (managed by GORM).
	UpdatedAt time.Time
	// ClosedAt is set while the request sits in a closed status
	// (rejected, finished, canceled); nil otherwise.
	ClosedAt *time.Time
}

// TableName specifies the database table name for the ServiceRequest model.
func (ServiceRequest) TableName() string {
	return "service_requests"
}
