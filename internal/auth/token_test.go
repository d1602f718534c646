package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken_Live(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(EnvLive)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(tok.Plaintext, "rb_live_") {
		t.Errorf("Token should start with rb_live_, got: %s", tok.Plaintext)
	}

	if len(tok.Prefix) != TokenPrefixLen {
		t.Errorf("Prefix should be %d chars, got: %d", TokenPrefixLen, len(tok.Prefix))
	}

	if tok.Hash == "" {
		t.Error("Hash should not be empty")
	}
	if !strings.HasPrefix(tok.Hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", tok.Hash)
	}

	if !strings.Contains(tok.Plaintext, tok.Prefix) {
		t.Error("Plaintext should contain prefix")
	}
}

func TestGenerateToken_DefaultsToLive(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("staging")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(tok.Plaintext, "rb_live_") {
		t.Errorf("Unknown env should default to live, got: %s", tok.Plaintext)
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(EnvTest)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken(tok.Plaintext)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if parsed.Env != EnvTest {
		t.Errorf("Env = %s, want %s", parsed.Env, EnvTest)
	}
	if parsed.Prefix != tok.Prefix {
		t.Errorf("Prefix = %s, want %s", parsed.Prefix, tok.Prefix)
	}
	if len(parsed.Secret) != TokenSecretLen {
		t.Errorf("Secret length = %d, want %d", len(parsed.Secret), TokenSecretLen)
	}
}

func TestParseToken_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong scheme", "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"},
		{"missing secret", "rb_live_abc123"},
		{"uppercase hex", "rb_live_ABC123_4F8D2E1B9C7A5F3D2E1B9C7A5F3D2E1B"},
		{"short secret", "rb_live_abc123_deadbeef"},
		{"bad env", "rb_prod_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseToken(tc.token); err == nil {
				t.Errorf("expected error for token %q", tc.token)
			}
			if ValidateTokenFormat(tc.token) {
				t.Errorf("ValidateTokenFormat(%q) should be false", tc.token)
			}
		})
	}
}
