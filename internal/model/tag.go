package model

import "time"

// Tag labels recipes (e.g. "vegan", "dessert"). Each tag belongs to exactly
// one user; name uniqueness is enforced system-wide by the schema.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
