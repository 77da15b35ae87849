package model

import (
	"fmt"
	"time"
)

// User represents an authentication user. Non-admin users belong to a home site.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	SiteID       *int64     `json:"site_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin            = "ADMIN"
	RoleBaseCommander    = "BASE_COMMANDER"
	RoleLogisticsOfficer = "LOGISTICS_OFFICER"
)

// Roles lists every known role.
var Roles = []string{RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
