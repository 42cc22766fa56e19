package auth

import "errors"

var (
	// ErrUnauthenticated is returned when no identity is present where one is required.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrAccountDisabled is returned when the authenticated account is inactive.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrForbidden is returned when the required permission set is not satisfied.
	ErrForbidden = errors.New("forbidden")
	// ErrRoleNotFound is returned when a role name does not resolve to a seeded role.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNotAssignable is returned when trying to assign a role that is not
	// an institution role (SITE_ADMIN is seeded, never assigned).
	ErrRoleNotAssignable = errors.New("role is not assignable within an institution")
	// ErrAlreadyAssigned is returned when the user already holds a role in the
	// institution; the old assignment must be removed first, there is no upsert.
	ErrAlreadyAssigned = errors.New("user already holds a role in this institution")
	// ErrAssignmentNotFound is returned when no assignment matches the given
	// (user, institution, role) triple exactly.
	ErrAssignmentNotFound = errors.New("role assignment not found")
	// ErrUserIsSiteAdmin is returned when an operation is illegal for site
	// admins (institution membership, deletion).
	ErrUserIsSiteAdmin = errors.New("user is a site admin")
	// ErrAlreadySiteAdmin is returned when marking an already marked user.
	ErrAlreadySiteAdmin = errors.New("user is already a site admin")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
