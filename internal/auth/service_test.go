package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with the seeded
// permission catalog.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserInstitutionRole{},
		&models.SiteAdmin{},
	)
	require.NoError(t, err, "failed to migrate test database")

	seedCatalog(t, db)

	return db
}

// seedCatalog materializes the static permission catalog the way the daemon
// does at startup.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	permissionIDs := make(map[string]uint)

	for _, name := range AllPermissions() {
		permission := models.Permission{Name: name}
		require.NoError(t, db.Create(&permission).Error)

		permissionIDs[name] = permission.ID
	}

	for _, roleName := range Roles() {
		role := models.Role{Name: string(roleName)}
		require.NoError(t, db.Create(&role).Error)

		for _, permission := range RolePermissions(roleName) {
			grant := models.RolePermission{
				RoleID:       role.ID,
				PermissionID: permissionIDs[permission],
			}
			require.NoError(t, db.Create(&grant).Error)
		}
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Active:   active,
		Username: username,
		Email:    username + "@example.com",
		Password: models.HashPassword("secret123"),
	}
	require.NoError(t, db.Create(user).Error)

	return user
}

func createTestInstitution(t *testing.T, db *gorm.DB, name string) *models.Institution {
	t.Helper()

	institution := &models.Institution{Name: name, Enabled: true}
	require.NoError(t, db.Create(institution).Error)

	return institution
}

func TestResolve(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	owner := createTestUser(t, db, "owner", true)
	admin := createTestUser(t, db, "admin", true)
	nobody := createTestUser(t, db, "nobody", true)
	institution := createTestInstitution(t, db, "city-lab")
	other := createTestInstitution(t, db, "other-lab")

	require.NoError(t, service.MarkSiteAdmin(admin.ID))
	require.NoError(t, service.AssignRole(owner.ID, institution.ID, RoleOwner))

	t.Run("member resolves role grants in their institution", func(t *testing.T) {
		permissions, err := service.Resolve(owner.ID, institution.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, RolePermissions(RoleOwner), permissions)
	})

	t.Run("membership does not leak into other institutions", func(t *testing.T) {
		permissions, err := service.Resolve(owner.ID, other.ID)
		require.NoError(t, err)
		assert.Empty(t, permissions)
	})

	t.Run("site admin resolves everywhere including institution zero", func(t *testing.T) {
		for _, institutionID := range []uint64{0, institution.ID, other.ID, 424242} {
			permissions, err := service.Resolve(admin.ID, institutionID)
			require.NoError(t, err)
			assert.ElementsMatch(t, RolePermissions(RoleSiteAdmin), permissions)
		}
	})

	t.Run("user without assignment resolves nothing", func(t *testing.T) {
		permissions, err := service.Resolve(nobody.ID, institution.ID)
		require.NoError(t, err)
		assert.Empty(t, permissions)
	})
}

func TestHasPermission(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	operator := createTestUser(t, db, "operator", true)
	institution := createTestInstitution(t, db, "city-lab")

	require.NoError(t, service.AssignRole(operator.ID, institution.ID, RoleOperator))

	held, err := service.HasPermission(operator.ID, institution.ID, PermissionName(ModuleServices, ActionUpdate))
	require.NoError(t, err)
	assert.True(t, held)

	held, err = service.HasPermission(operator.ID, institution.ID, PermissionName(ModuleServices, ActionDestroy))
	require.NoError(t, err)
	assert.False(t, held)
}

func TestAuthorize(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	manager := createTestUser(t, db, "manager", true)
	disabled := createTestUser(t, db, "disabled", false)
	institution := createTestInstitution(t, db, "city-lab")

	require.NoError(t, service.AssignRole(manager.ID, institution.ID, RoleManager))
	require.NoError(t, service.AssignRole(disabled.ID, institution.ID, RoleManager))

	t.Run("nil user is unauthenticated", func(t *testing.T) {
		err := service.Authorize(nil, institution.ID, Require(ModuleServices, ActionIndex))
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("disabled account is blocked even with a role", func(t *testing.T) {
		err := service.Authorize(disabled, institution.ID, Require(ModuleServices, ActionIndex))
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("zero permission requirement passes on identity alone", func(t *testing.T) {
		assert.NoError(t, service.Authorize(manager, 0))
	})

	t.Run("held permissions pass", func(t *testing.T) {
		err := service.Authorize(manager, institution.ID,
			Require(ModuleServices, ActionIndex, ActionShow, ActionDestroy))
		assert.NoError(t, err)
	})

	t.Run("partial match denies", func(t *testing.T) {
		// manager holds the services permissions but none of the user module
		err := service.Authorize(manager, institution.ID,
			Require(ModuleServices, ActionIndex),
			Require(ModuleUser, ActionIndex))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("wrong institution denies", func(t *testing.T) {
		err := service.Authorize(manager, institution.ID+1, Require(ModuleServices, ActionIndex))
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAuthorizeReactivation(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	disabled := createTestUser(t, db, "disabled", false)

	t.Run("skips the active account rule", func(t *testing.T) {
		assert.NoError(t, service.AuthorizeReactivation(disabled, 0))
	})

	t.Run("still requires an identity", func(t *testing.T) {
		assert.ErrorIs(t, service.AuthorizeReactivation(nil, 0), ErrUnauthenticated)
	})
}

func TestAssignRole(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	member := createTestUser(t, db, "member", true)
	admin := createTestUser(t, db, "admin", true)
	institution := createTestInstitution(t, db, "city-lab")
	other := createTestInstitution(t, db, "other-lab")

	require.NoError(t, service.MarkSiteAdmin(admin.ID))

	t.Run("site admin role is not assignable", func(t *testing.T) {
		err := service.AssignRole(member.ID, institution.ID, RoleSiteAdmin)
		assert.ErrorIs(t, err, ErrRoleNotAssignable)
	})

	t.Run("site admins cannot become members", func(t *testing.T) {
		err := service.AssignRole(admin.ID, institution.ID, RoleOwner)
		assert.ErrorIs(t, err, ErrUserIsSiteAdmin)
	})

	t.Run("one role per user and institution", func(t *testing.T) {
		require.NoError(t, service.AssignRole(member.ID, institution.ID, RoleOwner))

		err := service.AssignRole(member.ID, institution.ID, RoleManager)
		assert.ErrorIs(t, err, ErrAlreadyAssigned)

		// a different institution is fine
		assert.NoError(t, service.AssignRole(member.ID, other.ID, RoleManager))
	})

	t.Run("role is readable back", func(t *testing.T) {
		role, err := service.RoleIn(member.ID, institution.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleOwner, role)
	})
}

func TestReplaceRole(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	member := createTestUser(t, db, "member", true)
	institution := createTestInstitution(t, db, "city-lab")

	t.Run("without an existing assignment", func(t *testing.T) {
		err := service.ReplaceRole(member.ID, institution.ID, RoleManager)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	require.NoError(t, service.AssignRole(member.ID, institution.ID, RoleOperator))

	t.Run("site admin role is not assignable", func(t *testing.T) {
		err := service.ReplaceRole(member.ID, institution.ID, RoleSiteAdmin)
		assert.ErrorIs(t, err, ErrRoleNotAssignable)
	})

	t.Run("swaps the held role in place", func(t *testing.T) {
		require.NoError(t, service.ReplaceRole(member.ID, institution.ID, RoleManager))

		role, err := service.RoleIn(member.ID, institution.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleManager, role)
	})
}

func TestRemoveRole(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	member := createTestUser(t, db, "member", true)
	institution := createTestInstitution(t, db, "city-lab")

	require.NoError(t, service.AssignRole(member.ID, institution.ID, RoleOperator))

	t.Run("wrong role name does not match", func(t *testing.T) {
		err := service.RemoveRole(member.ID, institution.ID, RoleOwner)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	t.Run("exact match removes", func(t *testing.T) {
		require.NoError(t, service.RemoveRole(member.ID, institution.ID, RoleOperator))

		_, err := service.RoleIn(member.ID, institution.ID)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})
}

func TestMarkSiteAdmin(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	member := createTestUser(t, db, "member", true)
	institution := createTestInstitution(t, db, "city-lab")

	require.NoError(t, service.AssignRole(member.ID, institution.ID, RoleOwner))

	t.Run("marking drops institution memberships", func(t *testing.T) {
		require.NoError(t, service.MarkSiteAdmin(member.ID))

		isAdmin, err := service.IsSiteAdmin(member.ID)
		require.NoError(t, err)
		assert.True(t, isAdmin)

		_, err = service.RoleIn(member.ID, institution.ID)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	t.Run("marking twice is refused", func(t *testing.T) {
		assert.ErrorIs(t, service.MarkSiteAdmin(member.ID), ErrAlreadySiteAdmin)
	})
}
