package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// roleByName resolves a seeded role row.
func (s *Service) roleByName(name RoleName) (*models.Role, error) {
	var role models.Role

	result := s.db.Where("name = ?", string(name)).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &role, nil
}

// AssignRole gives a user a role within an institution. Only institution
// roles are assignable; a user holds at most one role per institution and an
// existing assignment is never overwritten, the caller must remove it first.
// Site admins cannot additionally become institution members.
func (s *Service) AssignRole(userID, institutionID uint64, role RoleName) error {
	assignable := false

	for _, r := range InstitutionRoles() {
		if r == role {
			assignable = true
			break
		}
	}

	if !assignable {
		return ErrRoleNotAssignable
	}

	isAdmin, err := s.IsSiteAdmin(userID)
	if err != nil {
		return err
	}

	if isAdmin {
		return ErrUserIsSiteAdmin
	}

	roleRow, err := s.roleByName(role)
	if err != nil {
		return err
	}

	var count int64

	err = s.db.Model(&models.UserInstitutionRole{}).
		Where("user_id = ? AND institution_id = ?", userID, institutionID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing assignment: %w", err)
	}

	if count > 0 {
		return ErrAlreadyAssigned
	}

	assignment := models.UserInstitutionRole{
		UserID:        userID,
		InstitutionID: institutionID,
		RoleID:        roleRow.ID,
	}

	if err := s.db.Create(&assignment).Error; err != nil {
		// The unique index can still fire under concurrent inserts.
		return fmt.Errorf("%w: %w", ErrAlreadyAssigned, err)
	}

	return nil
}

// RemoveRole deletes the assignment only if it matches the given role
// exactly; removing with the wrong role name is reported as not found.
func (s *Service) RemoveRole(userID, institutionID uint64, role RoleName) error {
	roleRow, err := s.roleByName(role)
	if err != nil {
		return err
	}

	result := s.db.
		Where("user_id = ? AND institution_id = ? AND role_id = ?", userID, institutionID, roleRow.ID).
		Delete(&models.UserInstitutionRole{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// ReplaceRole swaps the role a user holds in an institution for another
// institution role. The user must already hold one; a first assignment goes
// through AssignRole.
func (s *Service) ReplaceRole(userID, institutionID uint64, role RoleName) error {
	assignable := false

	for _, r := range InstitutionRoles() {
		if r == role {
			assignable = true
			break
		}
	}

	if !assignable {
		return ErrRoleNotAssignable
	}

	roleRow, err := s.roleByName(role)
	if err != nil {
		return err
	}

	var assignment models.UserInstitutionRole

	result := s.db.
		Where("user_id = ? AND institution_id = ?", userID, institutionID).
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}

		return result.Error
	}

	return s.db.Model(&assignment).Update("role_id", roleRow.ID).Error
}

// RoleIn returns the role a user holds in an institution, or
// ErrAssignmentNotFound when there is none.
func (s *Service) RoleIn(userID, institutionID uint64) (RoleName, error) {
	var assignment models.UserInstitutionRole

	result := s.db.Preload("Role").
		Where("user_id = ? AND institution_id = ?", userID, institutionID).
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrAssignmentNotFound
		}

		return "", result.Error
	}

	return RoleName(assignment.Role.Name), nil
}

// MarkSiteAdmin inserts the global site-admin marker for a user. This is a
// seed-time operation, not exposed as a runtime mutation; a site admin also
// cannot keep ordinary institution memberships, so any are removed.
func (s *Service) MarkSiteAdmin(userID uint64) error {
	isAdmin, err := s.IsSiteAdmin(userID)
	if err != nil {
		return err
	}

	if isAdmin {
		return ErrAlreadySiteAdmin
	}

	roleRow, err := s.roleByName(RoleSiteAdmin)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserInstitutionRole{}).Error; err != nil {
			return fmt.Errorf("failed to drop institution memberships: %w", err)
		}

		marker := models.SiteAdmin{UserID: userID, RoleID: roleRow.ID}
		if err := tx.Create(&marker).Error; err != nil {
			return fmt.Errorf("failed to create site admin marker: %w", err)
		}

		return nil
	})
}
