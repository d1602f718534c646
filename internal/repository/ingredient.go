package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for ingredient repository operations.
var (
	ErrIngredientNotFound   = errors.New("ingredient not found")
	ErrIngredientNameExists = errors.New("ingredient name already exists")
)

// IngredientFilter defines filters for listing ingredients.
type IngredientFilter struct {
	// UserID scopes results to a single owner. Required.
	UserID string
	// AssignedOnly restricts results to ingredients referenced by at least
	// one of the owner's recipes.
	AssignedOnly bool
}

// CreateIngredient inserts a new ingredient.
func (r *Repository) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		ingredient.ID,
		ingredient.Name,
		ingredient.UserID,
		ingredient.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientNameExists
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	return nil
}

// GetIngredientByID retrieves an ingredient owned by the given user.
// An ingredient belonging to another user is reported as not found.
func (r *Repository) GetIngredientByID(ctx context.Context, userID, id string) (*model.Ingredient, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM ingredients
		WHERE id = $1 AND user_id = $2
	`

	ingredient, err := scanIngredient(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}

	return ingredient, nil
}

// ListIngredients lists ingredients visible to the filter's owner,
// name-descending. With AssignedOnly set, only ingredients referenced by at
// least one of the owner's recipes are returned, each at most once even when
// referenced by several recipes.
func (r *Repository) ListIngredients(ctx context.Context, filter IngredientFilter) ([]*model.Ingredient, error) {
	query := `
		SELECT i.id, i.name, i.user_id, i.created_at
		FROM ingredients i
		WHERE i.user_id = $1
		ORDER BY i.name DESC
	`

	if filter.AssignedOnly {
		query = `
			SELECT DISTINCT i.id, i.name, i.user_id, i.created_at
			FROM ingredients i
			JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
			JOIN recipes r ON r.id = ri.recipe_id
			WHERE i.user_id = $1 AND r.user_id = $1
			ORDER BY i.name DESC
		`
	}

	rows, err := r.pool.Query(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*model.Ingredient
	for rows.Next() {
		ingredient, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ingredient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// UpdateIngredient renames an ingredient owned by the given user.
func (r *Repository) UpdateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientNameExists
		}
		return fmt.Errorf("failed to update ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// DeleteIngredient removes an ingredient owned by the given user.
func (r *Repository) DeleteIngredient(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM ingredients WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}
	return nil
}

func scanIngredient(row pgx.Row) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	err := row.Scan(
		&ingredient.ID,
		&ingredient.Name,
		&ingredient.UserID,
		&ingredient.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}
