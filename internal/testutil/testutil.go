// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/recipebox/recipebox/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema drops and recreates one migration's schema for tests.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", migration+".down.sql")
	upPath := filepath.Join(root, "migrations", migration+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_users")
}

// ResetTokensSchema drops and recreates the auth_tokens schema for tests.
func ResetTokensSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_auth_tokens")
}

// ResetRecipeSchema drops and recreates the tags, ingredients and recipes
// schema for tests, including the association tables.
func ResetRecipeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_recipes")
}

// ResetAllSchemas rebuilds every schema. Dependent tables are dropped first
// so the users table can be recreated, then rebuilt on top of it.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ResetRecipeSchema(ctx, pool); err != nil {
		return err
	}
	if err := ResetTokensSchema(ctx, pool); err != nil {
		return err
	}
	if err := ResetUsersSchema(ctx, pool); err != nil {
		return err
	}
	if err := ResetTokensSchema(ctx, pool); err != nil {
		return err
	}
	return ResetRecipeSchema(ctx, pool)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("user"),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQwMDAwMDAwMA$" + UniqueID("h"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestTag creates a test tag owned by userID.
func NewTestTag(t testing.TB, userID, name string) *model.Tag {
	t.Helper()
	return &model.Tag{
		ID:        UniqueID("tag"),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestIngredient creates a test ingredient owned by userID.
func NewTestIngredient(t testing.TB, userID, name string) *model.Ingredient {
	t.Helper()
	return &model.Ingredient{
		ID:        UniqueID("ing"),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestRecipe creates a test recipe owned by userID.
func NewTestRecipe(t testing.TB, userID, title string) *model.Recipe {
	t.Helper()
	now := time.Now().UTC()
	return &model.Recipe{
		ID:          UniqueID("rec"),
		Title:       title,
		TimeMinutes: 15,
		Price:       9.99,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestToken creates a test auth token for userID.
func NewTestToken(t testing.TB, userID, prefix string) *model.AuthToken {
	t.Helper()
	now := time.Now().UTC()
	return &model.AuthToken{
		ID:          UniqueID("tok"),
		UserID:      userID,
		TokenHash:   "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQwMDAwMDAwMA$" + UniqueID("h"),
		TokenPrefix: prefix,
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
