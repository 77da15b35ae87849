package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleAdmin, true},
		{RoleBaseCommander, true},
		{RoleLogisticsOfficer, true},
		// Unknown roles fail-closed.
		{"admin", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidRole(tt.role), "ValidRole(%q)", tt.role)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword(%q) error = %v", tt.password, err)
	}
}
