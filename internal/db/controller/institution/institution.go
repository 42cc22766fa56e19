// Package institution provides CRUD operations for institutions.
package institution

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

var (
	// ErrInstitutionNotFound is returned when an institution does not exist.
	ErrInstitutionNotFound = errors.New("institution not found")
	// ErrNameTaken is returned when an institution with the name already exists.
	ErrNameTaken = errors.New("institution name already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Config carries the mutable attributes of an institution.
type Config struct {
	Name                string
	Information         string
	Address             string
	Location            string
	Web                 string
	Keywords            string
	Email               string
	DaysAndOpeningHours string
}

// Create adds a new institution. New institutions start disabled until a
// site admin activates them.
func Create(db *gorm.DB, cfg Config) (*models.Institution, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var count int64

	if err := db.Model(&models.Institution{}).Where("name = ?", cfg.Name).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrNameTaken
	}

	institution := &models.Institution{
		Name:                cfg.Name,
		Information:         cfg.Information,
		Address:             cfg.Address,
		Location:            cfg.Location,
		Web:                 cfg.Web,
		Keywords:            cfg.Keywords,
		Email:               cfg.Email,
		DaysAndOpeningHours: cfg.DaysAndOpeningHours,
		Enabled:             false,
	}

	if err := db.Create(institution).Error; err != nil {
		return nil, err
	}

	return institution, nil
}

// Get retrieves an institution by ID.
func Get(db *gorm.DB, institutionID uint64) (*models.Institution, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var institution models.Institution

	result := db.First(&institution, institutionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInstitutionNotFound
		}

		return nil, result.Error
	}

	return &institution, nil
}

// GetAll retrieves all institutions ordered by name.
func GetAll(db *gorm.DB) ([]models.Institution, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var institutions []models.Institution

	result := db.Order("name ASC").Find(&institutions)
	if result.Error != nil {
		return nil, result.Error
	}

	return institutions, nil
}

// Update applies changes to an existing institution.
func Update(db *gorm.DB, institutionID uint64, cfg Config) (*models.Institution, error) {
	institution, err := Get(db, institutionID)
	if err != nil {
		return nil, err
	}

	institution.Name = cfg.Name
	institution.Information = cfg.Information
	institution.Address = cfg.Address
	institution.Location = cfg.Location
	institution.Web = cfg.Web
	institution.Keywords = cfg.Keywords
	institution.Email = cfg.Email
	institution.DaysAndOpeningHours = cfg.DaysAndOpeningHours

	if err := db.Save(institution).Error; err != nil {
		return nil, err
	}

	return institution, nil
}

// SetEnabled activates or deactivates an institution.
func SetEnabled(db *gorm.DB, institutionID uint64, enabled bool) (*models.Institution, error) {
	institution, err := Get(db, institutionID)
	if err != nil {
		return nil, err
	}

	institution.Enabled = enabled

	if err := db.Save(institution).Error; err != nil {
		return nil, err
	}

	return institution, nil
}

// Delete removes an institution; services, requests, notes, history and
// role assignments go with it by cascade.
func Delete(db *gorm.DB, institutionID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Institution{}, institutionID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrInstitutionNotFound
	}

	return nil
}
