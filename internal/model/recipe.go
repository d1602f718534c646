package model

import "time"

// Recipe represents a recipe owned by a single user, with many-to-many
// associations to that user's tags and ingredients.
type Recipe struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TimeMinutes   int       `json:"time_minutes"`
	Price         float64   `json:"price"`
	UserID        string    `json:"user_id"`
	TagIDs        []string  `json:"tag_ids"`
	IngredientIDs []string  `json:"ingredient_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasTag reports whether the recipe references the given tag.
func (r *Recipe) HasTag(tagID string) bool {
	for _, id := range r.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// HasIngredient reports whether the recipe references the given ingredient.
func (r *Recipe) HasIngredient(ingredientID string) bool {
	for _, id := range r.IngredientIDs {
		if id == ingredientID {
			return true
		}
	}
	return false
}
