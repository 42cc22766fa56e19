package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// DocumentType represents the kind of identity document a user registered with.
type DocumentType string

const (
	// DocumentTypeDNI is a national identity document.
	DocumentTypeDNI DocumentType = "dni"
	// DocumentTypeCivicBooklet is a civic booklet (libreta civica).
	DocumentTypeCivicBooklet DocumentType = "lc"
	// DocumentTypeEnrollmentBooklet is an enrollment booklet (libreta de enrolamiento).
	DocumentTypeEnrollmentBooklet DocumentType = "le"
)

// Gender represents the self-reported gender of a user.
type Gender string

const (
	// GenderMale is the male option.
	GenderMale Gender = "male"
	// GenderFemale is the female option.
	GenderFemale Gender = "female"
	// GenderOther is the free-text option; the text lives in User.GenderOther.
	GenderOther Gender = "other"
	// GenderNotSpecified is the "prefer not to say" option.
	GenderNotSpecified Gender = "not_specified"
)

// User represents a user account in the system.
// End users submit service requests; institution staff additionally hold a
// role per institution (see UserInstitutionRole), and site administrators are
// marked globally (see SiteAdmin).
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active and can operate.
	Active bool
	// Username is the unique username chosen at registration.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the unique email address used to log in.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password. Never serialized.
	Password string `gorm:"size:255" json:"-"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100"`
	// DocumentType is the kind of identity document (dni, lc, le).
	DocumentType DocumentType `gorm:"type:varchar(10)"`
	// DocumentNumber is the identity document number.
	DocumentNumber string `gorm:"size:32"`
	// Gender is the self-reported gender option.
	Gender Gender `gorm:"type:varchar(20)"`
	// GenderOther holds the free text when Gender is "other".
	GenderOther string `gorm:"size:100"`
	// Address is the user's street address.
	Address string `gorm:"size:255"`
	// Phone is the user's contact phone number.
	Phone string `gorm:"size:32"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
