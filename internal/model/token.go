package model

import "time"

// AuthToken represents an issued login token. Only the argon2id hash of the
// token secret is persisted; the plaintext is returned once at login.
type AuthToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *AuthToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token is past its expiry.
func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsable returns true if the token can still authenticate requests.
func (t *AuthToken) IsUsable() bool {
	return !t.IsRevoked() && !t.IsExpired()
}
