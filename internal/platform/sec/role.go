// Copyright (c) 2026 Atelier. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Staff: can moderate submissions (approve, un-approve, soft-delete)
	// and overwrite week metadata
	RoleModerator UserRole = "moderator"

	// Can submit and manage their own works
	RoleArtist UserRole = "artist"

	// Default role for standard registered users
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsStaff reports whether the role carries moderation privileges.
func (r UserRole) IsStaff() bool {
	return r.AtLeast(RoleModerator)
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleArtist:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
