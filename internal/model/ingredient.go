package model

import "time"

// Ingredient is a named component referenced by recipes. Each ingredient
// belongs to exactly one user; name uniqueness is enforced system-wide by
// the schema.
type Ingredient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
