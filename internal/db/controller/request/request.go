// Package request owns the service-request lifecycle: creation, status
// transitions with their append-only history trail, and notes.
package request

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

var (
	// ErrRequestNotFound is returned when a service request does not exist.
	ErrRequestNotFound = errors.New("service request not found")
	// ErrServiceNotFound is returned when the requested service does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrServiceDisabled is returned when the requested service is not enabled.
	ErrServiceDisabled = errors.New("service is disabled")
	// ErrInvalidStatus is returned when a transition targets an unknown status.
	ErrInvalidStatus = errors.New("invalid request status")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create opens a new service request against an existing, enabled service.
// The owning institution is derived from the service, never supplied by the
// caller. The initial status is always in_process and closed_at is unset.
func Create(db *gorm.DB, userID, serviceID uint64, title, description string) (*models.ServiceRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var service models.Service

	result := db.First(&service, serviceID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}

		return nil, result.Error
	}

	if !service.Enabled {
		return nil, ErrServiceDisabled
	}

	request := &models.ServiceRequest{
		Title:         title,
		Description:   description,
		Status:        models.StatusInProcess,
		UserID:        userID,
		InstitutionID: service.InstitutionID,
		ServiceID:     service.ID,
	}

	if err := db.Create(request).Error; err != nil {
		return nil, err
	}

	return request, nil
}

// Get retrieves a service request by ID.
func Get(db *gorm.DB, requestID uint64) (*models.ServiceRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var request models.ServiceRequest

	result := db.First(&request, requestID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}

		return nil, result.Error
	}

	return &request, nil
}

// Transition moves a request to a new status and records exactly one history
// entry, both inside one transaction. A transition to the current status is
// a no-op: nothing is written and false is returned, so repeated identical
// transitions are observable as no-ops by the caller. Any status may follow
// any other; there is no forbidden-transition table.
func Transition(db *gorm.DB, requestID uint64, newStatus models.RequestStatus, observation string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	if !newStatus.Valid() {
		return false, ErrInvalidStatus
	}

	request, err := Get(db, requestID)
	if err != nil {
		return false, err
	}

	if request.Status == newStatus {
		return false, nil
	}

	request.Status = newStatus

	if newStatus.Closed() {
		now := time.Now()
		request.ClosedAt = &now
	} else {
		request.ClosedAt = nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		entry := models.RequestHistoryEntry{
			ServiceRequestID: request.ID,
			Status:           newStatus,
			Observation:      observation,
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// History returns the request's status trajectory, oldest first.
func History(db *gorm.DB, requestID uint64) ([]models.RequestHistoryEntry, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if _, err := Get(db, requestID); err != nil {
		return nil, err
	}

	var entries []models.RequestHistoryEntry

	result := db.Where("service_request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// AddNote attaches a free-text note to a request. Notes never change the
// request's status.
func AddNote(db *gorm.DB, requestID, userID uint64, text string) (*models.RequestNote, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if _, err := Get(db, requestID); err != nil {
		return nil, err
	}

	note := &models.RequestNote{
		Note:             text,
		ServiceRequestID: requestID,
		UserID:           userID,
	}

	if err := db.Create(note).Error; err != nil {
		return nil, err
	}

	return note, nil
}

// Notes returns all notes of a request, oldest first.
func Notes(db *gorm.DB, requestID uint64) ([]models.RequestNote, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if _, err := Get(db, requestID); err != nil {
		return nil, err
	}

	var notes []models.RequestNote

	result := db.Where("service_request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&notes)
	if result.Error != nil {
		return nil, result.Error
	}

	return notes, nil
}

// ListByInstitution returns one page of an institution's requests plus the
// total count.
func ListByInstitution(db *gorm.DB, institutionID uint64, page, pageSize int) ([]models.ServiceRequest, int64, error) {
	return list(db, "institution_id = ?", institutionID, page, pageSize)
}

// ListByUser returns one page of a user's own requests plus the total count.
func ListByUser(db *gorm.DB, userID uint64, page, pageSize int) ([]models.ServiceRequest, int64, error) {
	return list(db, "user_id = ?", userID, page, pageSize)
}

func list(db *gorm.DB, where string, id uint64, page, pageSize int) ([]models.ServiceRequest, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 10
	}

	var total int64

	tx := db.Model(&models.ServiceRequest{}).Where(where, id)
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.ServiceRequest

	err := tx.Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
