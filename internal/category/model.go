package category

import "time"

// Category is a named grouping of items with an optional fill quota. A nil
// DesiredCount means no fill target is displayed.
type Category struct {
	ID           string    `json:"id"`
	DinnerID     string    `json:"dinner_id"`
	Name         string    `json:"name"`
	DesiredCount *int      `json:"desired_count,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filled reports whether the category has reached its quota. A category with
// no quota is never filled.
func (c *Category) Filled(itemCount int) bool {
	return c.DesiredCount != nil && itemCount >= *c.DesiredCount
}
