// Package auth implements the role-based authorization core: the static
// permission catalog, the per-institution role assignment store, the
// permission resolver and the request-time authorization guard.
package auth
