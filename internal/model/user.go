// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User represents an account. Passwords are stored only as argon2id hashes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
// The local part is preserved as given; the domain part is lowercased.
// Returns the input (trimmed) unchanged if it contains no "@".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	local := email[:at]
	domain := email[at+1:]

	return local + "@" + strings.ToLower(domain)
}

// AuthContext holds the authenticated principal for a request.
// Injected into the request context by the auth middleware.
type AuthContext struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	IsStaff     bool
	IsSuperuser bool

	// CacheKey identifies the cached copy of this context. Derived from the
	// presented token, never persisted.
	CacheKey string
}
