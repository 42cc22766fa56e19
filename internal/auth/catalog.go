package auth

// Module is a functional area permissions are scoped to.
type Module string

// Modules of the portal. The enumeration is fixed; permissions only exist
// for (module, action) pairs listed in the catalog below.
const (
	ModuleUser            Module = "user"
	ModuleInstitution     Module = "institution"
	ModuleUserInstitution Module = "user_institution"
	ModuleServices        Module = "services"
	ModuleServiceRequest  Module = "service_request"
	ModuleSetting         Module = "setting"
)

// Action is an operation kind within a module.
type Action string

// Actions. Not every action is valid for every module; see moduleActions.
const (
	ActionIndex      Action = "index"
	ActionShow       Action = "show"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDestroy    Action = "destroy"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// RoleName identifies one of the seeded roles.
type RoleName string

// Roles. SITE_ADMIN is global and only ever seeded through the site_admins
// table; the other three are assignable per institution.
const (
	RoleSiteAdmin RoleName = "SITE_ADMIN"
	RoleOwner     RoleName = "INSTITUTION_OWNER"
	RoleManager   RoleName = "INSTITUTION_MANAGER"
	RoleOperator  RoleName = "INSTITUTION_OPERATOR"
)

// modules lists all modules in catalog order, used wherever a deterministic
// iteration over the maps below is needed.
var modules = []Module{ //nolint:gochecknoglobals
	ModuleUser,
	ModuleInstitution,
	ModuleUserInstitution,
	ModuleServices,
	ModuleServiceRequest,
	ModuleSetting,
}

// moduleActions is the validity table: the legal action set per module.
// The cross product of this table is the complete permission set.
var moduleActions = map[Module][]Action{ //nolint:gochecknoglobals
	ModuleUser: {
		ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
	},
	ModuleInstitution: {
		ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
		ActionActivate, ActionDeactivate,
	},
	ModuleUserInstitution: {
		ActionIndex, ActionCreate, ActionUpdate, ActionDestroy,
	},
	ModuleServices: {
		ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
	},
	ModuleServiceRequest: {
		ActionIndex, ActionShow, ActionUpdate, ActionDestroy,
	},
	ModuleSetting: {
		ActionShow, ActionUpdate,
	},
}

// roleGrants is the grant table: the module/action sets each role holds.
// Every grant must be contained in moduleActions; catalog tests enforce it.
var roleGrants = map[RoleName]map[Module][]Action{ //nolint:gochecknoglobals
	RoleSiteAdmin: {
		ModuleUser: {
			ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
		},
		ModuleInstitution: {
			ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
			ActionActivate, ActionDeactivate,
		},
		ModuleSetting: {
			ActionShow, ActionUpdate,
		},
	},
	RoleOwner: {
		ModuleUserInstitution: {
			ActionIndex, ActionCreate, ActionUpdate, ActionDestroy,
		},
		ModuleServices: {
			ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
		},
		ModuleServiceRequest: {
			ActionIndex, ActionShow, ActionUpdate, ActionDestroy,
		},
	},
	RoleManager: {
		ModuleServices: {
			ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionDestroy,
		},
		ModuleServiceRequest: {
			ActionIndex, ActionShow, ActionUpdate, ActionDestroy,
		},
	},
	RoleOperator: {
		ModuleServices: {
			ActionIndex, ActionShow, ActionCreate, ActionUpdate,
		},
		ModuleServiceRequest: {
			ActionIndex, ActionShow, ActionUpdate,
		},
	},
}

// PermissionName returns the external name of the (module, action) pair,
// e.g. "service_request_update". This exact shape is a compatibility
// contract with the web layer's route guards.
func PermissionName(m Module, a Action) string {
	return string(m) + "_" + string(a)
}

// Modules returns all modules in catalog order.
func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)

	return out
}

// Roles returns all role names, SITE_ADMIN first.
func Roles() []RoleName {
	return []RoleName{RoleSiteAdmin, RoleOwner, RoleManager, RoleOperator}
}

// InstitutionRoles returns the roles assignable within an institution.
// SITE_ADMIN is deliberately absent; it is seeded, never assigned.
func InstitutionRoles() []RoleName {
	return []RoleName{RoleOwner, RoleManager, RoleOperator}
}

// ValidActions returns the legal actions for a module in catalog order.
// An unknown module is a programming error and yields nil.
func ValidActions(m Module) []Action {
	actions := moduleActions[m]
	out := make([]Action, len(actions))
	copy(out, actions)

	return out
}

// RolePermissions returns the permission names granted to a role, in
// catalog order. An unknown role is a programming error and yields nil.
func RolePermissions(r RoleName) []string {
	grants, ok := roleGrants[r]
	if !ok {
		return nil
	}

	var out []string

	for _, m := range modules {
		for _, a := range grants[m] {
			out = append(out, PermissionName(m, a))
		}
	}

	return out
}

// AllPermissions returns every valid permission name: the cross product of
// the validity table, in catalog order.
func AllPermissions() []string {
	var out []string

	for _, m := range modules {
		for _, a := range moduleActions[m] {
			out = append(out, PermissionName(m, a))
		}
	}

	return out
}
