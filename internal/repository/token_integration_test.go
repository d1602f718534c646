//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/testutil"
)

func newTokenTestEnv(t *testing.T) (context.Context, *Repository, *model.User) {
	t.Helper()

	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("tokens"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	return ctx, repo, user
}

func TestIntegrationTokenRepository_CreateAndLookup(t *testing.T) {
	ctx, repo, user := newTokenTestEnv(t)

	token := testutil.NewTestToken(t, user.ID, "a1b2c3")
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	tokens, err := repo.GetTokensByPrefix(ctx, "a1b2c3")
	if err != nil {
		t.Fatalf("GetTokensByPrefix: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	got := tokens[0]
	if got.ID != token.ID || got.UserID != user.ID {
		t.Errorf("got token %q for user %q, want %q for %q", got.ID, got.UserID, token.ID, user.ID)
	}
	if got.TokenHash != token.TokenHash {
		t.Error("token hash not persisted verbatim")
	}
	if got.LastUsedAt != nil || got.RevokedAt != nil {
		t.Error("fresh token should have no last-used or revoked timestamps")
	}
}

func TestIntegrationTokenRepository_PrefixExcludesUnusable(t *testing.T) {
	ctx, repo, user := newTokenTestEnv(t)

	const prefix = "dead99"

	usable := testutil.NewTestToken(t, user.ID, prefix)
	if err := repo.CreateToken(ctx, usable); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	expired := testutil.NewTestToken(t, user.ID, prefix)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := repo.CreateToken(ctx, expired); err != nil {
		t.Fatalf("CreateToken expired: %v", err)
	}

	revoked := testutil.NewTestToken(t, user.ID, prefix)
	if err := repo.CreateToken(ctx, revoked); err != nil {
		t.Fatalf("CreateToken revoked: %v", err)
	}
	if err := repo.RevokeToken(ctx, revoked.ID); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	tokens, err := repo.GetTokensByPrefix(ctx, prefix)
	if err != nil {
		t.Fatalf("GetTokensByPrefix: %v", err)
	}
	if len(tokens) != 1 || tokens[0].ID != usable.ID {
		t.Fatalf("got %d tokens, want only the usable one", len(tokens))
	}
}

func TestIntegrationTokenRepository_UpdateLastUsed(t *testing.T) {
	ctx, repo, user := newTokenTestEnv(t)

	token := testutil.NewTestToken(t, user.ID, "feed01")
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if err := repo.UpdateTokenLastUsed(ctx, token.ID); err != nil {
		t.Fatalf("UpdateTokenLastUsed: %v", err)
	}

	tokens, err := repo.GetTokensByPrefix(ctx, "feed01")
	if err != nil {
		t.Fatalf("GetTokensByPrefix: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	if tokens[0].LastUsedAt == nil {
		t.Error("last_used_at not set")
	}
}

func TestIntegrationTokenRepository_RevokeToken(t *testing.T) {
	ctx, repo, user := newTokenTestEnv(t)

	token := testutil.NewTestToken(t, user.ID, "beef02")
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if err := repo.RevokeToken(ctx, token.ID); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	// Revoking twice reports not found: the first revocation consumed it.
	if err := repo.RevokeToken(ctx, token.ID); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("second RevokeToken = %v, want ErrTokenNotFound", err)
	}
	if err := repo.RevokeToken(ctx, "tok-missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("RevokeToken unknown = %v, want ErrTokenNotFound", err)
	}
}

func TestIntegrationTokenRepository_RevokeUserTokens(t *testing.T) {
	ctx, repo, user := newTokenTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("bystander"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i, prefix := range []string{"aaa111", "bbb222"} {
		token := testutil.NewTestToken(t, user.ID, prefix)
		if err := repo.CreateToken(ctx, token); err != nil {
			t.Fatalf("CreateToken %d: %v", i, err)
		}
	}
	otherToken := testutil.NewTestToken(t, other.ID, "ccc333")
	if err := repo.CreateToken(ctx, otherToken); err != nil {
		t.Fatalf("CreateToken other: %v", err)
	}

	revoked, err := repo.RevokeUserTokens(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevokeUserTokens: %v", err)
	}
	if revoked != 2 {
		t.Errorf("revoked = %d, want 2", revoked)
	}

	// A second pass finds nothing left to revoke.
	revoked, err = repo.RevokeUserTokens(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevokeUserTokens again: %v", err)
	}
	if revoked != 0 {
		t.Errorf("revoked = %d, want 0", revoked)
	}

	remaining, err := repo.GetTokensByPrefix(ctx, "ccc333")
	if err != nil {
		t.Fatalf("GetTokensByPrefix: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("other user's token was revoked")
	}
}
