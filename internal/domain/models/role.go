// internal/domain/models/role.go
package models

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ErrBadRole is returned when a string does not name a known role.
var ErrBadRole = errors.New(`role must be "user"|"agent"|"admin"`)

// ParseRole lowercases and trims s and returns the matching Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAgent, RoleAdmin:
		return r, nil
	default:
		return "", ErrBadRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
