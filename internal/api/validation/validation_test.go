package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"user.name+tag@example.co.uk",
		"gm_123@sub.domain.org",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), "email %q", email)
	}

	invalid := []string{
		"",
		"notanemail",
		"@example.com",
		"user@",
		"user@nodot",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "email %q", email)
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("550e8400e29b41d4a716446655440000"))
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "password123", true},
		{"too short", "pass1", false},
		{"no numbers", "passwordonly", false},
		{"no letters", "12345678", false},
		{"long valid", "averylongpassword42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := IsValidPassword(tt.password)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hel\x00lo"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
	assert.Equal(t, "tabbed\there", SanitizeString("tabbed\there"))
	assert.Equal(t, "clean", SanitizeString("cle\x07an"))
}
