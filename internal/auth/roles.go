package auth

import (
	"fmt"
	"strings"
)

// Role is the single authorization attribute carried by a user and its
// tokens. The set is closed; anything else is rejected at the boundary.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleBrand      Role = "brand"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// AllRoles lists every role accepted by the protected-route allow-list.
var AllRoles = []Role{RoleCustomer, RoleBrand, RoleAdmin, RoleSuperadmin}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBrand, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Administrative reports whether the role may act on other users' sessions.
func (r Role) Administrative() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}
