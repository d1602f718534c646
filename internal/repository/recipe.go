package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for recipe repository operations.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
)

// RecipeFilter defines filters for listing recipes.
type RecipeFilter struct {
	// UserID scopes results to a single owner. Required.
	UserID string
	// TagIDs restricts results to recipes referencing any of these tags.
	TagIDs []string
	// IngredientIDs restricts results to recipes referencing any of these
	// ingredients.
	IngredientIDs []string
}

const recipeSelect = `
	SELECT r.id, r.title, r.time_minutes, r.price, r.user_id, r.created_at, r.updated_at,
	       COALESCE(array_agg(DISTINCT rt.tag_id) FILTER (WHERE rt.tag_id IS NOT NULL), '{}'),
	       COALESCE(array_agg(DISTINCT ri.ingredient_id) FILTER (WHERE ri.ingredient_id IS NOT NULL), '{}')
	FROM recipes r
	LEFT JOIN recipe_tags rt ON rt.recipe_id = r.id
	LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
`

// CreateRecipe inserts a recipe and its tag/ingredient associations in one
// transaction. Referenced tags and ingredients must belong to the recipe's
// owner; a foreign or unknown reference fails the whole insert.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO recipes (id, title, time_minutes, price, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, query,
		recipe.ID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.UserID,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	if err := setRecipeAssociations(ctx, tx, recipe); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a recipe owned by the given user, including its
// association IDs. A recipe belonging to another user is reported as not found.
func (r *Repository) GetRecipeByID(ctx context.Context, userID, id string) (*model.Recipe, error) {
	query := recipeSelect + `
		WHERE r.id = $1 AND r.user_id = $2
		GROUP BY r.id
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	return recipe, nil
}

// ListRecipes lists the owner's recipes, newest first. Optional tag and
// ingredient filters restrict to recipes referencing any of the given IDs.
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	query := recipeSelect + ` WHERE r.user_id = $1`
	args := []any{filter.UserID}
	argIndex := 2

	if len(filter.TagIDs) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM recipe_tags x WHERE x.recipe_id = r.id AND x.tag_id = ANY($%d)
		)`, argIndex)
		args = append(args, filter.TagIDs)
		argIndex++
	}

	if len(filter.IngredientIDs) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM recipe_ingredients x WHERE x.recipe_id = r.id AND x.ingredient_id = ANY($%d)
		)`, argIndex)
		args = append(args, filter.IngredientIDs)
		argIndex++
	}

	query += ` GROUP BY r.id ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipe updates a recipe's fields and replaces its associations in
// one transaction.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE recipes
		SET title = $3, time_minutes = $4, price = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`

	result, err := tx.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID); err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}

	if err := setRecipeAssociations(ctx, tx, recipe); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe update: %w", err)
	}

	return nil
}

// DeleteRecipe removes a recipe owned by the given user. Association rows
// are removed by ON DELETE CASCADE.
func (r *Repository) DeleteRecipe(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM recipes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// setRecipeAssociations inserts join rows for the recipe's tag and ingredient
// IDs. The INSERT..SELECT enforces that every referenced row belongs to the
// recipe's owner; a shortfall in inserted rows means a foreign or unknown ID.
func setRecipeAssociations(ctx context.Context, tx pgx.Tx, recipe *model.Recipe) error {
	if len(recipe.TagIDs) > 0 {
		result, err := tx.Exec(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id)
			SELECT $1, t.id FROM tags t WHERE t.id = ANY($2) AND t.user_id = $3
		`, recipe.ID, recipe.TagIDs, recipe.UserID)
		if err != nil {
			return fmt.Errorf("failed to set recipe tags: %w", err)
		}
		if result.RowsAffected() != int64(len(recipe.TagIDs)) {
			return ErrTagNotFound
		}
	}

	if len(recipe.IngredientIDs) > 0 {
		result, err := tx.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id)
			SELECT $1, i.id FROM ingredients i WHERE i.id = ANY($2) AND i.user_id = $3
		`, recipe.ID, recipe.IngredientIDs, recipe.UserID)
		if err != nil {
			return fmt.Errorf("failed to set recipe ingredients: %w", err)
		}
		if result.RowsAffected() != int64(len(recipe.IngredientIDs)) {
			return ErrIngredientNotFound
		}
	}

	return nil
}

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	var tagIDs, ingredientIDs []string
	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.TimeMinutes,
		&recipe.Price,
		&recipe.UserID,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
		pq.Array(&tagIDs),
		pq.Array(&ingredientIDs),
	)
	if err != nil {
		return nil, err
	}
	recipe.TagIDs = tagIDs
	recipe.IngredientIDs = ingredientIDs
	return &recipe, nil
}
