package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionName(t *testing.T) {
	testCases := []struct {
		name     string
		module   Module
		action   Action
		expected string
	}{
		{
			name:     "service request update",
			module:   ModuleServiceRequest,
			action:   ActionUpdate,
			expected: "service_request_update",
		},
		{
			name:     "institution activate",
			module:   ModuleInstitution,
			action:   ActionActivate,
			expected: "institution_activate",
		},
		{
			name:     "setting show",
			module:   ModuleSetting,
			action:   ActionShow,
			expected: "setting_show",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PermissionName(tc.module, tc.action))
		})
	}
}

// TestGrantsAreValid verifies that every role grant refers to a valid
// (module, action) pair of the validity table.
func TestGrantsAreValid(t *testing.T) {
	for role, grants := range roleGrants {
		for module, actions := range grants {
			valid := make(map[Action]bool)
			for _, a := range moduleActions[module] {
				valid[a] = true
			}

			for _, a := range actions {
				assert.True(t, valid[a],
					"role %s grants %s on module %s which is not a valid action", role, a, module)
			}
		}
	}
}

func TestAllPermissions(t *testing.T) {
	all := AllPermissions()

	// cross product of the validity table
	expected := 0
	for _, actions := range moduleActions {
		expected += len(actions)
	}

	require.Len(t, all, expected)

	// no duplicates, every name is module prefixed
	seen := make(map[string]bool)
	for _, name := range all {
		assert.False(t, seen[name], "duplicate permission %s", name)
		seen[name] = true

		assert.True(t, strings.Contains(name, "_"), "permission %s has no module prefix", name)
	}
}

func TestRolePermissions(t *testing.T) {
	testCases := []struct {
		name     string
		role     RoleName
		contains []string
		excludes []string
	}{
		{
			name: "site admin holds user, institution and setting",
			role: RoleSiteAdmin,
			contains: []string{
				"user_index", "user_destroy",
				"institution_activate", "institution_deactivate",
				"setting_show", "setting_update",
			},
			excludes: []string{"services_index", "service_request_update"},
		},
		{
			name: "owner manages memberships and services",
			role: RoleOwner,
			contains: []string{
				"user_institution_index", "user_institution_create", "user_institution_destroy",
				"services_destroy", "service_request_destroy",
			},
			excludes: []string{"user_index", "setting_update"},
		},
		{
			name: "manager has no membership permissions",
			role: RoleManager,
			contains: []string{
				"services_destroy", "service_request_destroy",
			},
			excludes: []string{"user_institution_index"},
		},
		{
			name: "operator cannot destroy",
			role: RoleOperator,
			contains: []string{
				"services_index", "services_show", "services_create", "services_update",
				"service_request_index", "service_request_show", "service_request_update",
			},
			excludes: []string{"services_destroy", "service_request_destroy"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			permissions := RolePermissions(tc.role)
			require.NotEmpty(t, permissions)

			for _, p := range tc.contains {
				assert.Contains(t, permissions, p)
			}

			for _, p := range tc.excludes {
				assert.NotContains(t, permissions, p)
			}
		})
	}

	t.Run("unknown role yields nil", func(t *testing.T) {
		assert.Nil(t, RolePermissions(RoleName("NOPE")))
	})
}

func TestInstitutionRoles(t *testing.T) {
	roles := InstitutionRoles()

	assert.NotContains(t, roles, RoleSiteAdmin)
	assert.ElementsMatch(t, []RoleName{RoleOwner, RoleManager, RoleOperator}, roles)
}

func TestValidActions(t *testing.T) {
	assert.Contains(t, ValidActions(ModuleServices), ActionShow)
	assert.NotContains(t, ValidActions(ModuleServiceRequest), ActionCreate)
	assert.NotContains(t, ValidActions(ModuleSetting), ActionIndex)
	assert.Empty(t, ValidActions(Module("bogus")))
}
