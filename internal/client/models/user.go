// Package models defines the records exchanged with the HarvestHub API.
package models

import (
	"fmt"
	"strings"
)

// Role is the account type chosen at registration.
type Role string

const (
	RoleFarmer    Role = "farmer"
	RoleSupplier  Role = "supplier"
	RoleNGO       Role = "ngo"
	RoleLogistics Role = "logistics"
)

// Roles lists the roles offered at registration.
var Roles = []Role{RoleFarmer, RoleSupplier, RoleNGO, RoleLogistics}

// ParseRole matches s case-insensitively against Roles.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is the identity returned by /login, /register and /profile.
type User struct {
	// ID is the server-assigned numeric identifier.
	ID int64 `json:"id"`
	// Name is the display name shown as poster_name on listings.
	Name string `json:"name"`
	// Email is the login.
	Email string `json:"email"`
	// Role decides how claims are handled; suppliers go through payment.
	Role Role `json:"role"`
}

// IsSupplier reports whether claims by u require the payment step.
func (u User) IsSupplier() bool {
	return u.Role == RoleSupplier
}
