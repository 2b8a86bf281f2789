package category

import (
	"errors"
	"time"
)

// CreateCategoryRequest represents the request to add a category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// Validate checks the required creation fields
func (r *CreateCategoryRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateCategoryRequest sets or clears the fill quota. A null desired_count
// clears it.
type UpdateCategoryRequest struct {
	DesiredCount *int `json:"desired_count"`
}

// CategoryResponse represents a category in API responses, annotated with its
// current item count and fill state.
type CategoryResponse struct {
	ID           string `json:"id"`
	DinnerID     string `json:"dinner_id"`
	Name         string `json:"name"`
	DesiredCount *int   `json:"desired_count,omitempty"`
	SortOrder    int    `json:"sort_order"`
	CreatedAt    string `json:"created_at"`
	ItemCount    int    `json:"item_count"`
	Filled       bool   `json:"filled"`
}

// ToResponse converts a Category model to a CategoryResponse DTO
func (c *Category) ToResponse(itemCount int) *CategoryResponse {
	return &CategoryResponse{
		ID:           c.ID,
		DinnerID:     c.DinnerID,
		Name:         c.Name,
		DesiredCount: c.DesiredCount,
		SortOrder:    c.SortOrder,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		ItemCount:    itemCount,
		Filled:       c.Filled(itemCount),
	}
}
