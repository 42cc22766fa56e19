package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// Requirement is the required permission set of one operation, expressed as
// a module plus the actions exercised on it. Handlers build their
// requirements as data and call the guard explicitly before business logic.
type Requirement struct {
	Module  Module
	Actions []Action
}

// Require builds a Requirement.
func Require(m Module, actions ...Action) Requirement {
	return Requirement{Module: m, Actions: actions}
}

// Permissions expands the requirement to permission names.
func (r Requirement) Permissions() []string {
	out := make([]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		out = append(out, PermissionName(r.Module, a))
	}

	return out
}

// Authorize gates an institution-scoped operation. It requires an
// authenticated, active user holding every permission of every requirement
// (AND semantics; partial matches deny). institutionID is the operation's
// target institution, or 0 for site-wide operations. A requirement list
// expanding to zero permissions passes once identity and active checks pass.
//
// Denials surface as ErrUnauthenticated, ErrAccountDisabled or ErrForbidden
// and are never downgraded to a different outcome.
func (s *Service) Authorize(user *models.User, institutionID uint64, reqs ...Requirement) error {
	if user == nil || user.ID == 0 {
		return ErrUnauthenticated
	}

	// the caller usually hands in a session snapshot; the active flag is
	// checked against the store so a disable takes effect immediately
	active, err := s.accountActive(user.ID)
	if err != nil {
		return err
	}

	if !active {
		return ErrAccountDisabled
	}

	return s.authorize(user, institutionID, reqs)
}

// AuthorizeReactivation is the self-service entry point for disabled
// accounts: identical to Authorize minus the active-account rule. Only the
// account-disabled boundary routes may use it.
func (s *Service) AuthorizeReactivation(user *models.User, institutionID uint64, reqs ...Requirement) error {
	if user == nil || user.ID == 0 {
		return ErrUnauthenticated
	}

	if _, err := s.accountActive(user.ID); err != nil {
		return err
	}

	return s.authorize(user, institutionID, reqs)
}

// accountActive reads the stored active flag. A session referencing a user
// that no longer exists counts as unauthenticated.
func (s *Service) accountActive(userID uint64) (bool, error) {
	var user models.User

	result := s.db.Select("id", "active").First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, ErrUnauthenticated
		}

		return false, result.Error
	}

	return user.Active, nil
}

func (s *Service) authorize(user *models.User, institutionID uint64, reqs []Requirement) error {
	var required []string
	for _, r := range reqs {
		required = append(required, r.Permissions()...)
	}

	if len(required) == 0 {
		return nil
	}

	effective, err := s.Resolve(user.ID, institutionID)
	if err != nil {
		return err
	}

	held := make(map[string]bool, len(effective))
	for _, p := range effective {
		held[p] = true
	}

	for _, p := range required {
		if !held[p] {
			return fmt.Errorf("%w: missing permission %s", ErrForbidden, p)
		}
	}

	return nil
}
