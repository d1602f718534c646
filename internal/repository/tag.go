package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for tag repository operations.
var (
	ErrTagNotFound   = errors.New("tag not found")
	ErrTagNameExists = errors.New("tag name already exists")
)

// TagFilter defines filters for listing tags.
type TagFilter struct {
	// UserID scopes results to a single owner. Required.
	UserID string
	// AssignedOnly restricts results to tags referenced by at least one
	// of the owner's recipes.
	AssignedOnly bool
}

// CreateTag inserts a new tag.
func (r *Repository) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := `
		INSERT INTO tags (id, name, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		tag.ID,
		tag.Name,
		tag.UserID,
		tag.CreatedAt,
	)

	if err != nil {
		// Name uniqueness is system-wide, matching the schema as observed.
		if isUniqueViolation(err) {
			return ErrTagNameExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetTagByID retrieves a tag owned by the given user.
// A tag belonging to another user is reported as not found.
func (r *Repository) GetTagByID(ctx context.Context, userID, id string) (*model.Tag, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM tags
		WHERE id = $1 AND user_id = $2
	`

	tag, err := scanTag(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by ID: %w", err)
	}

	return tag, nil
}

// ListTags lists tags visible to the filter's owner, name-descending.
// With AssignedOnly set, only tags referenced by at least one of the owner's
// recipes are returned, each tag at most once.
func (r *Repository) ListTags(ctx context.Context, filter TagFilter) ([]*model.Tag, error) {
	query := `
		SELECT t.id, t.name, t.user_id, t.created_at
		FROM tags t
		WHERE t.user_id = $1
		ORDER BY t.name DESC
	`

	if filter.AssignedOnly {
		query = `
			SELECT DISTINCT t.id, t.name, t.user_id, t.created_at
			FROM tags t
			JOIN recipe_tags rt ON rt.tag_id = t.id
			JOIN recipes r ON r.id = rt.recipe_id
			WHERE t.user_id = $1 AND r.user_id = $1
			ORDER BY t.name DESC
		`
	}

	rows, err := r.pool.Query(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// UpdateTag renames a tag owned by the given user.
func (r *Repository) UpdateTag(ctx context.Context, tag *model.Tag) error {
	query := `
		UPDATE tags
		SET name = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagNameExists
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

// DeleteTag removes a tag owned by the given user. Recipe associations are
// removed by ON DELETE CASCADE on the join table.
func (r *Repository) DeleteTag(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM tags WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

func scanTag(row pgx.Row) (*model.Tag, error) {
	var tag model.Tag
	err := row.Scan(
		&tag.ID,
		&tag.Name,
		&tag.UserID,
		&tag.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
