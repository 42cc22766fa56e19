// Package service provides CRUD operations for the services an institution
// publishes.
package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

var (
	// ErrServiceNotFound is returned when a service does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInstitutionNotFound is returned when the owning institution does not exist.
	ErrInstitutionNotFound = errors.New("institution not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Config carries the mutable attributes of a service.
type Config struct {
	Name        string
	Description string
	Keywords    string
	Kind        models.ServiceKind
	Enabled     bool
}

// Create publishes a new service under an institution.
func Create(db *gorm.DB, institutionID uint64, cfg Config) (*models.Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var count int64

	err := db.Model(&models.Institution{}).Where("id = ?", institutionID).Count(&count).Error
	if err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, ErrInstitutionNotFound
	}

	service := &models.Service{
		Name:          cfg.Name,
		Description:   cfg.Description,
		Keywords:      cfg.Keywords,
		Kind:          cfg.Kind,
		Enabled:       cfg.Enabled,
		InstitutionID: institutionID,
	}

	if err := db.Create(service).Error; err != nil {
		return nil, err
	}

	return service, nil
}

// Get retrieves a service by ID.
func Get(db *gorm.DB, serviceID uint64) (*models.Service, error) {
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

	return &service, nil
}

// ListByInstitution returns one page of an institution's services plus the
// total count.
func ListByInstitution(db *gorm.DB, institutionID uint64, page, pageSize int) ([]models.Service, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 10
	}

	tx := db.Model(&models.Service{}).Where("institution_id = ?", institutionID)

	var total int64

	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service

	err := tx.Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&services).Error
	if err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

// Update applies changes to an existing service.
func Update(db *gorm.DB, serviceID uint64, cfg Config) (*models.Service, error) {
	service, err := Get(db, serviceID)
	if err != nil {
		return nil, err
	}

	service.Name = cfg.Name
	service.Description = cfg.Description
	service.Keywords = cfg.Keywords
	service.Kind = cfg.Kind
	service.Enabled = cfg.Enabled

	if err := db.Save(service).Error; err != nil {
		return nil, err
	}

	return service, nil
}

// SetEnabled toggles whether a service accepts new requests.
func SetEnabled(db *gorm.DB, serviceID uint64, enabled bool) (*models.Service, error) {
	service, err := Get(db, serviceID)
	if err != nil {
		return nil, err
	}

	service.Enabled = enabled

	if err := db.Save(service).Error; err != nil {
		return nil, err
	}

	return service, nil
}

// Delete removes a service; its requests, notes and history go by cascade.
func Delete(db *gorm.DB, serviceID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Service{}, serviceID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}
