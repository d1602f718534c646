package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/recipebox/recipebox/internal/model"
)

// ErrTokenNotFound indicates no matching auth token row.
var ErrTokenNotFound = errors.New("auth token not found")

// CreateToken inserts a new auth token.
func (r *Repository) CreateToken(ctx context.Context, token *model.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, token_hash, token_prefix, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.TokenPrefix,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create auth token: %w", err)
	}

	return nil
}

// GetTokensByPrefix retrieves usable (not revoked, not expired) tokens by
// their visible prefix. Multiple rows are possible on prefix collision.
func (r *Repository) GetTokensByPrefix(ctx context.Context, prefix string) ([]*model.AuthToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, last_used_at, revoked_at, expires_at, created_at
		FROM auth_tokens
		WHERE token_prefix = $1 AND revoked_at IS NULL AND expires_at > now()
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.AuthToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return tokens, nil
}

// UpdateTokenLastUsed records the time a token last authenticated a request.
func (r *Repository) UpdateTokenLastUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_tokens SET last_used_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}
	return nil
}

// RevokeToken marks a single token as revoked.
func (r *Repository) RevokeToken(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE auth_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// RevokeUserTokens revokes every active token belonging to a user.
// Returns the number of tokens revoked.
func (r *Repository) RevokeUserTokens(ctx context.Context, userID string) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE auth_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*model.AuthToken, error) {
	var token model.AuthToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.TokenPrefix,
		&token.LastUsedAt,
		&token.RevokedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
