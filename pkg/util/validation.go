package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	// OrganizationNameMinLength is the minimum length of an organization name
	OrganizationNameMinLength = 3
	// OrganizationNameMaxLength is the maximum length of an organization name
	OrganizationNameMaxLength = 50
	// EmailMaxLength is the maximum length of an email address
	EmailMaxLength = 254
	// PasswordMaxLength is the longest password bcrypt can hash
	PasswordMaxLength = 72
)

// forbiddenNameChars cannot appear in a MongoDB collection name, so they
// cannot appear in an organization name either.
const forbiddenNameChars = "$\x00"

// ValidateOrganizationName checks the length and character rules for an
// organization name. Length is counted in characters, not bytes.
func ValidateOrganizationName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("organization name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("organization name must be valid UTF-8")
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return fmt.Errorf("organization name cannot contain '$' or NUL")
	}

	n := utf8.RuneCountInString(name)
	if n < OrganizationNameMinLength {
		return fmt.Errorf("organization name must be at least %d characters", OrganizationNameMinLength)
	}
	if n > OrganizationNameMaxLength {
		return fmt.Errorf("organization name must be no more than %d characters", OrganizationNameMaxLength)
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidateEmail checks that an (already normalized) email is well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > EmailMaxLength {
		return fmt.Errorf("email exceeds maximum length")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword rejects empty passwords and ones bcrypt would truncate.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("password must be no more than %d bytes", PasswordMaxLength)
	}
	return nil
}
