package auth

import (
	"fmt"

	"gorm.io/gorm"
)

// Service resolves effective permissions for a user within an institution.
// It is the single source of truth for "what can this user do here": all
// lookups go user -> site_admins -> SITE_ADMIN grants, or user ->
// users_institutions_roles -> roles_permissions -> permissions. Resolution
// is read-only and idempotent.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DB exposes the underlying connection for collaborators wired at startup.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// IsSiteAdmin checks whether the user carries the global site-admin marker.
func (s *Service) IsSiteAdmin(userID uint64) (bool, error) {
	var count int64

	err := s.db.Table("site_admins").
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check site admin marker: %w", err)
	}

	return count > 0, nil
}

// Resolve computes the effective permission set for a user in an institution.
// Site admins get the full SITE_ADMIN set regardless of institutionID
// (pass 0 for no institution context); users without an assignment get an
// empty set; everyone else gets their role's permission set.
func (s *Service) Resolve(userID, institutionID uint64) ([]string, error) {
	isAdmin, err := s.IsSiteAdmin(userID)
	if err != nil {
		return nil, err
	}

	var permissions []string

	if isAdmin {
		err = s.db.Table("permissions").
			Select("DISTINCT permissions.name").
			Joins("JOIN roles_permissions ON roles_permissions.permission_id = permissions.id").
			Joins("JOIN site_admins ON site_admins.role_id = roles_permissions.role_id").
			Where("site_admins.user_id = ?", userID).
			Pluck("permissions.name", &permissions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to resolve site admin permissions: %w", err)
		}

		return permissions, nil
	}

	err = s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN roles_permissions ON roles_permissions.permission_id = permissions.id").
		Joins("JOIN users_institutions_roles ON users_institutions_roles.role_id = roles_permissions.role_id").
		Where("users_institutions_roles.user_id = ? AND users_institutions_roles.institution_id = ?",
			userID, institutionID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve institution permissions: %w", err)
	}

	return permissions, nil
}

// HasPermission checks if a user holds a specific permission in an institution.
func (s *Service) HasPermission(userID, institutionID uint64, permission string) (bool, error) {
	permissions, err := s.Resolve(userID, institutionID)
	if err != nil {
		return false, err
	}

	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}

	return false, nil
}

// HasAllPermissions checks if a user holds every one of the given permissions
// in an institution. An empty list is trivially satisfied.
func (s *Service) HasAllPermissions(userID, institutionID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return true, nil
	}

	effective, err := s.Resolve(userID, institutionID)
	if err != nil {
		return false, err
	}

	held := make(map[string]bool, len(effective))
	for _, p := range effective {
		held[p] = true
	}

	for _, p := range permissions {
		if !held[p] {
			return false, nil
		}
	}

	return true, nil
}
