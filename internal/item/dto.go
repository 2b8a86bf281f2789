package item

import (
	"errors"
	"time"
)

// ItemRequest represents the request to add or edit an item. On edit the
// dietary tag set fully replaces the existing one.
type ItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Description *string  `json:"description,omitempty"`
	DietaryTags []string `json:"dietary_tags"`
}

// Validate checks the required fields and the tag vocabulary
func (r *ItemRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return ValidateTags(r.DietaryTags)
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID          string   `json:"id"`
	DinnerID    string   `json:"dinner_id"`
	GuestID     string   `json:"guest_id"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at"`
	DietaryTags []string `json:"dietary_tags"`
}

// ToResponse converts an Item model to an ItemResponse DTO
func (i *Item) ToResponse() *ItemResponse {
	tags := i.DietaryTags
	if tags == nil {
		tags = []string{}
	}
	return &ItemResponse{
		ID:          i.ID,
		DinnerID:    i.DinnerID,
		GuestID:     i.GuestID,
		CategoryID:  i.CategoryID,
		Name:        i.Name,
		Description: i.Description,
		CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339),
		DietaryTags: tags,
	}
}
