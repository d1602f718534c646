// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// User service errors.
var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles account and token business logic.
type UserService struct {
	repo     *repository.Repository
	cache    *cache.Cache
	tokenEnv string
	tokenTTL time.Duration
	metrics  metrics.Recorder
}

// NewUserService creates a new UserService. tokenEnv selects the issued
// token environment indicator (auth.EnvLive or auth.EnvTest).
func NewUserService(repo *repository.Repository, cacheClient *cache.Cache, tokenEnv string, tokenTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:     repo,
		cache:    cacheClient,
		tokenEnv: tokenEnv,
		tokenTTL: tokenTTL,
		metrics:  recorder,
	}
}

// RegisterInput defines input for creating a user.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates a regular user account. The email is normalized before
// storage and the password is stored only as an argon2id hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	return s.createUser(ctx, input, false)
}

// CreateSuperuser creates an account with the staff and superuser flags set.
// Only reachable from operator tooling, never from the HTTP surface.
func (s *UserService) CreateSuperuser(ctx context.Context, input RegisterInput) (*model.User, error) {
	return s.createUser(ctx, input, true)
}

func (s *UserService) createUser(ctx context.Context, input RegisterInput, super bool) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      super,
		IsSuperuser:  super,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserService) CheckPassword(user *model.User, plaintext string) bool {
	match, err := auth.VerifyPassword(plaintext, user.PasswordHash)
	return err == nil && match
}

// IssuedToken is a freshly issued auth token with its one-time plaintext.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticate verifies credentials and issues an auth token.
// All credential failures collapse into ErrInvalidCredentials so callers
// cannot distinguish unknown emails from wrong passwords.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, *IssuedToken, error) {
	user, err := s.repo.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin("failure")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.CheckPassword(user, password) {
		s.metrics.IncLogin("failure")
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.IncLogin("failure")
		return nil, nil, ErrUserInactive
	}

	generated, err := auth.GenerateToken(s.tokenEnv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	token := &model.AuthToken{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		ExpiresAt:   now.Add(s.tokenTTL),
		CreatedAt:   now,
	}

	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.metrics.IncLogin("success")

	return user, &IssuedToken{Token: generated.Plaintext, ExpiresAt: token.ExpiresAt}, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput defines input for updating the caller's own account.
type UpdateProfileInput struct {
	Email    *string
	Password *string
}

// UpdateProfile updates the caller's email and/or password.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := model.NormalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Logout revokes the presenting token and drops its cached auth context.
func (s *UserService) Logout(ctx context.Context, tokenID, cacheKey string) error {
	if err := s.repo.RevokeToken(ctx, tokenID); err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if s.cache != nil && cacheKey != "" {
		_ = s.cache.DeleteAuthContext(ctx, cacheKey)
	}
	return nil
}

// RevokeAllTokens revokes every active token for a user. Returns the number
// of tokens revoked. Cached auth contexts expire on their own short TTL.
func (s *UserService) RevokeAllTokens(ctx context.Context, userID string) (int64, error) {
	return s.repo.RevokeUserTokens(ctx, userID)
}

// SearchUsers lists users for staff tooling, optionally filtered by email
// substring.
func (s *UserService) SearchUsers(ctx context.Context, emailQuery string, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.SearchUsers(ctx, emailQuery, limit)
}
