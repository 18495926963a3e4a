// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package sec

import "slices"

// # User Roles

// UserRole represents the authorization level granted to an account.
// The set is open: roles are compared by exact name.
type UserRole string

const (
	// Can create and edit courses
	RoleAdmin UserRole = "admin"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// In reports whether r is one of allowed.
func (r UserRole) In(allowed ...UserRole) bool {
	return slices.Contains(allowed, r)
}

// String implements [fmt.Stringer].
func (r UserRole) String() string {
	return string(r)
}
