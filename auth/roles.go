package auth

import "strings"

// UserRole is the single role a user holds
type UserRole string

const (
	// RoleUser can manage its own resources
	RoleUser UserRole = "USER"
	// RoleAdmin can moderate any resource
	RoleAdmin UserRole = "ADMIN"
)

func (r UserRole) String() string {
	return string(r)
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole parses a role name, case insensitive
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}

// roleNames is used by validation rules
func roleNames() []any {
	roles := GetAllRoles()
	out := make([]any, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
