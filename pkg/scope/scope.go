// Package scope carries the caller's identity and branch restriction through
// request context. It is the single place branch-level access control is
// decided: repositories consult Filter before every read and services call
// CanWriteBranch before every mutation, so an omitted call site cannot widen
// a staff user's visibility.
package scope

import (
	"context"
)

// Roles known to the inventory service. They are supplied by the external
// auth layer and trusted as given.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// AllBranches is the sentinel branch assignment granting unscoped access.
const AllBranches = "All"

// Scope identifies the caller of an operation.
type Scope struct {
	UserID string
	Name   string
	Role   string
	Branch string
}

// Restricted reports whether the caller is confined to a single branch.
// Owners, admins and staff assigned to "All" see the unscoped set.
func (s *Scope) Restricted() bool {
	if s == nil {
		return false
	}
	return s.Role == RoleStaff && s.Branch != "" && s.Branch != AllBranches
}

// CanManageOrders reports whether the caller may approve or reject orders.
func (s *Scope) CanManageOrders() bool {
	if s == nil {
		return false
	}
	return s.Role == RoleOwner || s.Role == RoleAdmin
}

// CanWriteBranch reports whether the caller may mutate data in the given branch.
func (s *Scope) CanWriteBranch(branch string) bool {
	if !s.Restricted() {
		return true
	}
	return branch == s.Branch
}

// System returns a scope representing the service itself. Used by background
// jobs such as the analytics broadcaster; it is never branch-restricted.
func System() *Scope {
	return &Scope{
		UserID: "00000000-0000-0000-0000-000000000000",
		Name:   "System",
		Role:   RoleOwner,
		Branch: AllBranches,
	}
}

type contextKey string

const scopeContextKey contextKey = "scope"

// WithScope returns a new context with the Scope attached.
func WithScope(ctx context.Context, s *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeContextKey, s)
}

// FromContext retrieves the Scope from the context.
// Returns nil if no scope is present (e.g. system operations).
func FromContext(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, ok := ctx.Value(scopeContextKey).(*Scope)
	if !ok {
		return nil
	}
	return s
}

// Filter returns the branch the caller is confined to and whether the
// restriction applies. Repositories add "AND branch = $n" when restricted.
func Filter(ctx context.Context) (branch string, restricted bool) {
	s := FromContext(ctx)
	if s == nil || !s.Restricted() {
		return "", false
	}
	return s.Branch, true
}
