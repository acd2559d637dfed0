package auth

import "strings"

// UserRole is carried as an opaque claim on sessions; the library assigns a
// default at creation and otherwise passes it through untouched.
type UserRole = string

const (
	// RoleUser is the default role assigned at account creation
	RoleUser UserRole = "user"
	// RoleAdmin is an administrative role
	RoleAdmin UserRole = "admin"
)

// DefaultRole returns role, or the standard default when role is blank.
func DefaultRole(role string) UserRole {
	role = strings.TrimSpace(role)
	if role == "" {
		return RoleUser
	}
	return role
}
