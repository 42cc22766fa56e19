package daemon

import (
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// Seed loads the data the application needs to work: the site config row,
// the permission catalog (permissions, roles and their grants) and, on a
// fresh database, a default site-admin account. Seeding is idempotent.
func Seed(db *gorm.DB) error {
	if err := siteconfig.Seed(db); err != nil {
		return err
	}

	if err := seedAuth(db); err != nil {
		return err
	}

	return seedAdmin(db)
}

// seedAuth materializes the static permission catalog: one permissions row
// per valid (module, action) pair, one roles row per role, and the
// roles_permissions grants. Skipped when roles already exist.
func seedAuth(db *gorm.DB) error {
	var count int64

	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		permissionIDs := make(map[string]uint)

		for _, name := range auth.AllPermissions() {
			permission := models.Permission{Name: name}
			if err := tx.Create(&permission).Error; err != nil {
				return err
			}

			permissionIDs[name] = permission.ID
		}

		for _, roleName := range auth.Roles() {
			role := models.Role{Name: string(roleName)}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}

			for _, permission := range auth.RolePermissions(roleName) {
				grant := models.RolePermission{
					RoleID:       role.ID,
					PermissionID: permissionIDs[permission],
				}
				if err := tx.Create(&grant).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// seedAdmin creates the default site administrator on an empty user table.
func seedAdmin(db *gorm.DB) error {
	var count int64

	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	// change the password after first login
	admin := models.User{
		Active:   true,
		Username: "admin",
		Email:    "admin@example.com",
		Password: models.HashPassword("changeme"),
		Gender:   models.GenderNotSpecified,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	return auth.NewService(db).MarkSiteAdmin(admin.ID)
}
