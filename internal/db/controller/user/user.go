// Package user provides CRUD operations for user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when the username is already in use.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrUserIsSiteAdmin is returned when deleting a user that carries the
	// site-admin marker; the marker must be removed first.
	ErrUserIsSiteAdmin = errors.New("cannot delete a site admin")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Config carries the attributes of a new user.
type Config struct {
	Username       string
	Email          string
	Password       string
	FirstName      string
	LastName       string
	DocumentType   models.DocumentType
	DocumentNumber string
	Gender         models.Gender
	GenderOther    string
	Address        string
	Phone          string
}

// Create registers a new, active user with a hashed password.
func Create(db *gorm.DB, cfg Config) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var count int64

	if err := db.Model(&models.User{}).Where("email = ?", cfg.Email).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrEmailTaken
	}

	if err := db.Model(&models.User{}).Where("username = ?", cfg.Username).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		Active:         true,
		Username:       cfg.Username,
		Email:          cfg.Email,
		Password:       models.HashPassword(cfg.Password),
		FirstName:      cfg.FirstName,
		LastName:       cfg.LastName,
		DocumentType:   cfg.DocumentType,
		DocumentNumber: cfg.DocumentNumber,
		Gender:         cfg.Gender,
		GenderOther:    cfg.GenderOther,
		Address:        cfg.Address,
		Phone:          cfg.Phone,
	}

	if err := db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, userID uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail retrieves a user by email.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// ValidateEmailPassword checks login credentials and returns the matching
// user, or ErrUserNotFound when either the email or the password is wrong.
func ValidateEmailPassword(db *gorm.DB, email, password string) (*models.User, error) {
	user, err := GetByEmail(db, email)
	if err != nil {
		return nil, err
	}

	if !user.VerifyPassword(password) {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Update applies profile changes to an existing user.
func Update(db *gorm.DB, userID uint64, cfg Config) (*models.User, error) {
	user, err := Get(db, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = cfg.FirstName
	user.LastName = cfg.LastName
	user.DocumentType = cfg.DocumentType
	user.DocumentNumber = cfg.DocumentNumber
	user.Gender = cfg.Gender
	user.GenderOther = cfg.GenderOther
	user.Address = cfg.Address
	user.Phone = cfg.Phone

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// ToggleActive flips the user's active flag and returns the updated user.
func ToggleActive(db *gorm.DB, userID uint64) (*models.User, error) {
	user, err := Get(db, userID)
	if err != nil {
		return nil, err
	}

	user.Active = !user.Active

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user. Users carrying the site-admin marker are refused;
// for everyone else the delete cascades to their requests and memberships.
func Delete(db *gorm.DB, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64

	err := db.Model(&models.SiteAdmin{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrUserIsSiteAdmin
	}

	result := db.Delete(&models.User{}, userID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// List returns one page of users plus the total count, optionally filtered
// by an email fragment and/or the active flag.
func List(db *gorm.DB, emailLike string, active *bool, page, pageSize int) ([]models.User, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 10
	}

	tx := db.Model(&models.User{})

	if emailLike != "" {
		tx = tx.Where("email LIKE ?", "%"+emailLike+"%")
	}

	if active != nil {
		tx = tx.Where("active = ?", *active)
	}

	var total int64

	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User

	err := tx.Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListByInstitution returns the members of an institution with their role
// names. Site admins never appear here; they cannot hold memberships.
func ListByInstitution(db *gorm.DB, institutionID uint64) ([]Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var members []Member

	err := db.Table("users").
		Select("users.id, users.username, users.email, users.active, roles.name AS role").
		Joins("JOIN users_institutions_roles ON users_institutions_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = users_institutions_roles.role_id").
		Where("users_institutions_roles.institution_id = ?", institutionID).
		Where("users.id NOT IN (SELECT user_id FROM site_admins)").
		Order("users.id ASC").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// Member is one row of an institution's member listing.
type Member struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
	Role     string `json:"role"`
}
