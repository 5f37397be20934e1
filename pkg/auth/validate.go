package auth

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	// BearerPrefix precedes the key in the authorization string.
	BearerPrefix = "Bearer "

	// KeyPrefix starts every secret key.
	KeyPrefix = "sk-"

	// KeyLength is the number of alphanumerics after KeyPrefix.
	KeyLength = 48
)

// FormatError reports a credential value that does not have the required
// shape. It never includes the rejected value.
type FormatError struct {
	// Field is "auth" or "organization"
	Field string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateAuth checks that auth is "Bearer sk-" followed by 48 ASCII
// alphanumerics and is a legal header value.
func ValidateAuth(auth string) error {
	parts := strings.Split(auth, " ")
	if len(parts) != 2 {
		return &FormatError{Field: "auth", Message: `expected "Bearer <key>"`}
	}
	if parts[0] != strings.TrimSpace(BearerPrefix) {
		return &FormatError{Field: "auth", Message: `scheme must be "Bearer"`}
	}
	if !validKey(parts[1]) {
		return &FormatError{
			Field:   "auth",
			Message: fmt.Sprintf("key must be %q followed by %d letters or digits", KeyPrefix, KeyLength),
		}
	}
	return ValidateHeaderValue("auth", auth)
}

// ValidateHeaderValue checks that value can be sent literally as an HTTP
// header value: visible ASCII or tab only.
func ValidateHeaderValue(field, value string) error {
	if !httpguts.ValidHeaderFieldValue(value) {
		return &FormatError{Field: field, Message: "contains characters not allowed in a header value"}
	}
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			return &FormatError{Field: field, Message: "contains non-ASCII characters"}
		}
	}
	return nil
}

// MaskAuth returns auth with all but the last four key characters hidden.
func MaskAuth(auth string) string {
	key := strings.TrimPrefix(auth, BearerPrefix)
	if len(key) <= len(KeyPrefix)+4 {
		return BearerPrefix + "***"
	}
	return BearerPrefix + KeyPrefix + "..." + key[len(key)-4:]
}

func validKey(key string) bool {
	if !strings.HasPrefix(key, KeyPrefix) {
		return false
	}
	rest := key[len(KeyPrefix):]
	if len(rest) != KeyLength {
		return false
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
