package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// NameRequest is the payload for creating or renaming a tag or ingredient.
type NameRequest struct {
	Name string `json:"name"`
}

// TagResponse is the public representation of a tag.
type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTagResponse converts a tag model for API output.
func NewTagResponse(t *model.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

// TagListResponse wraps a tag listing.
type TagListResponse struct {
	Tags  []TagResponse `json:"tags"`
	Total int           `json:"total"`
}

// IngredientResponse is the public representation of an ingredient.
type IngredientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIngredientResponse converts an ingredient model for API output.
func NewIngredientResponse(i *model.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:        i.ID,
		Name:      i.Name,
		CreatedAt: i.CreatedAt,
	}
}

// IngredientListResponse wraps an ingredient listing.
type IngredientListResponse struct {
	Ingredients []IngredientResponse `json:"ingredients"`
	Total       int                  `json:"total"`
}

// CreateRecipeRequest is the payload for creating a recipe.
type CreateRecipeRequest struct {
	Title         string   `json:"title"`
	TimeMinutes   int      `json:"time_minutes"`
	Price         float64  `json:"price"`
	TagIDs        []string `json:"tag_ids"`
	IngredientIDs []string `json:"ingredient_ids"`
}

// UpdateRecipeRequest is the payload for partially updating a recipe.
// Omitted fields are left unchanged; present ID lists replace associations.
type UpdateRecipeRequest struct {
	Title         *string   `json:"title,omitempty"`
	TimeMinutes   *int      `json:"time_minutes,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	TagIDs        *[]string `json:"tag_ids,omitempty"`
	IngredientIDs *[]string `json:"ingredient_ids,omitempty"`
}

// RecipeResponse is the public representation of a recipe.
type RecipeResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TimeMinutes   int       `json:"time_minutes"`
	Price         float64   `json:"price"`
	TagIDs        []string  `json:"tag_ids"`
	IngredientIDs []string  `json:"ingredient_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRecipeResponse converts a recipe model for API output.
func NewRecipeResponse(r *model.Recipe) RecipeResponse {
	tagIDs := r.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	ingredientIDs := r.IngredientIDs
	if ingredientIDs == nil {
		ingredientIDs = []string{}
	}
	return RecipeResponse{
		ID:            r.ID,
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// RecipeListResponse wraps a recipe listing.
type RecipeListResponse struct {
	Recipes []RecipeResponse `json:"recipes"`
	Total   int              `json:"total"`
}
