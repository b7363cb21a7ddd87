package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,63}$`)
)

// maxPasswordLength bounds the KDF input.
const maxPasswordLength = 256

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUsername accepts 1 to 64 characters of letters, digits, dot, underscore and dash.
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string, minLength int) bool {
	return len(password) >= minLength && len(password) <= maxPasswordLength
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIdentifier prepares a username-or-email login identifier for lookup.
// Emails are case-insensitive; usernames keep their case.
func NormalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}
