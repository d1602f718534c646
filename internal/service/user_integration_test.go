//go:build integration

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/testutil"
)

func newUserServiceTestEnv(t *testing.T) (context.Context, *UserService, *repository.Repository) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release db lock: %v", err)
		}
	})

	if err := testutil.ResetAllSchemas(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schemas: %v", err)
	}

	svc := NewUserService(repo, nil, auth.EnvTest, time.Hour, nil)
	return ctx, svc, repo
}

func TestIntegrationUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx, svc, repo := newUserServiceTestEnv(t)

	email := testutil.UniqueEmail("Login")
	user, err := svc.Register(ctx, RegisterInput{Email: email, Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("hash = %q, want argon2id PHC format", user.PasswordHash)
	}

	got, issued, err := svc.Authenticate(ctx, email, "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated user %q, want %q", got.ID, user.ID)
	}

	parsed, err := auth.ParseToken(issued.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}

	// Only the hash lands in the database, findable by prefix.
	tokens, err := repo.GetTokensByPrefix(ctx, parsed.Prefix)
	if err != nil {
		t.Fatalf("GetTokensByPrefix: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	if tokens[0].TokenHash == issued.Token {
		t.Error("plaintext token persisted")
	}
	match, err := auth.VerifyPassword(issued.Token, tokens[0].TokenHash)
	if err != nil || !match {
		t.Errorf("stored hash does not verify the issued token: match=%v err=%v", match, err)
	}
}

func TestIntegrationUserService_AuthenticateFailuresAreUniform(t *testing.T) {
	ctx, svc, _ := newUserServiceTestEnv(t)

	email := testutil.UniqueEmail("victim")
	if _, err := svc.Register(ctx, RegisterInput{Email: email, Password: "secret password"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Authenticate(ctx, email, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestIntegrationUserService_EmailNormalization(t *testing.T) {
	ctx, svc, _ := newUserServiceTestEnv(t)

	user, err := svc.Register(ctx, RegisterInput{Email: "  Chef@EXAMPLE.COM ", Password: "secret password"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// The domain is case-folded; the local part is kept as given.
	if user.Email != "Chef@example.com" {
		t.Errorf("stored email = %q, want %q", user.Email, "Chef@example.com")
	}

	// Login with a differently-cased domain still resolves the account.
	if _, _, err := svc.Authenticate(ctx, "Chef@Example.Com", "secret password"); err != nil {
		t.Errorf("Authenticate with cased domain: %v", err)
	}

	// A duplicate differing only in domain case is a conflict.
	if _, err := svc.Register(ctx, RegisterInput{Email: "Chef@example.COM", Password: "secret password"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register duplicate = %v, want ErrEmailTaken", err)
	}
}

func TestIntegrationUserService_UpdateProfile(t *testing.T) {
	ctx, svc, _ := newUserServiceTestEnv(t)

	email := testutil.UniqueEmail("before")
	user, err := svc.Register(ctx, RegisterInput{Email: email, Password: "old password"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	newEmail := testutil.UniqueEmail("after")
	newPassword := "new password"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Email:    &newEmail,
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Email != newEmail {
		t.Errorf("email = %q, want %q", updated.Email, newEmail)
	}

	if _, _, err := svc.Authenticate(ctx, newEmail, "old password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, newEmail, newPassword); err != nil {
		t.Errorf("Authenticate with new password: %v", err)
	}
}

func TestIntegrationUserService_LogoutRevokesToken(t *testing.T) {
	ctx, svc, repo := newUserServiceTestEnv(t)

	email := testutil.UniqueEmail("logout")
	if _, err := svc.Register(ctx, RegisterInput{Email: email, Password: "secret password"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, issued, err := svc.Authenticate(ctx, email, "secret password")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	parsed, err := auth.ParseToken(issued.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	tokens, err := repo.GetTokensByPrefix(ctx, parsed.Prefix)
	if err != nil || len(tokens) != 1 {
		t.Fatalf("GetTokensByPrefix: %v (%d rows)", err, len(tokens))
	}

	if err := svc.Logout(ctx, tokens[0].ID, auth.QuickHash(issued.Token)); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	remaining, err := repo.GetTokensByPrefix(ctx, parsed.Prefix)
	if err != nil {
		t.Fatalf("GetTokensByPrefix after logout: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("token still usable after logout")
	}

	// Logout is idempotent: a second call on a gone token succeeds.
	if err := svc.Logout(ctx, tokens[0].ID, auth.QuickHash(issued.Token)); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestIntegrationUserService_RevokeAllTokens(t *testing.T) {
	ctx, svc, _ := newUserServiceTestEnv(t)

	email := testutil.UniqueEmail("revoke")
	user, err := svc.Register(ctx, RegisterInput{Email: email, Password: "secret password"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Authenticate(ctx, email, "secret password"); err != nil {
			t.Fatalf("Authenticate %d: %v", i, err)
		}
	}

	revoked, err := svc.RevokeAllTokens(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevokeAllTokens: %v", err)
	}
	if revoked != 3 {
		t.Errorf("revoked = %d, want 3", revoked)
	}
}
