// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest is the payload for exchanging credentials for a token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest is the payload for updating the caller's own account.
// Omitted fields are left unchanged.
type UpdateMeRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserResponse converts a user model for API output.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// TokenResponse carries a freshly issued auth token.
// The token plaintext is returned exactly once.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserListResponse is the staff listing of accounts.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// RevokeTokensResponse reports how many tokens were revoked.
type RevokeTokensResponse struct {
	Revoked int64 `json:"revoked"`
}
