package dinner

import (
	"errors"
	"time"
)

// CreateDinnerRequest represents the request to create a new dinner
type CreateDinnerRequest struct {
	HostName    string  `json:"host_name" validate:"required"`
	HostPhone   string  `json:"host_phone" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	DateTime    string  `json:"date_time" validate:"required"` // RFC 3339
	Location    string  `json:"location" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the required creation fields
func (r *CreateDinnerRequest) Validate() error {
	switch {
	case r.HostName == "":
		return errors.New("host_name is required")
	case r.HostPhone == "":
		return errors.New("host_phone is required")
	case r.Title == "":
		return errors.New("title is required")
	case r.DateTime == "":
		return errors.New("date_time is required")
	case r.Location == "":
		return errors.New("location is required")
	}
	return nil
}

// UpdateDinnerRequest represents the request to edit a dinner's details
type UpdateDinnerRequest struct {
	Title       string  `json:"title" validate:"required"`
	DateTime    string  `json:"date_time" validate:"required"` // RFC 3339
	Location    string  `json:"location" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the required update fields
func (r *UpdateDinnerRequest) Validate() error {
	switch {
	case r.Title == "":
		return errors.New("title is required")
	case r.DateTime == "":
		return errors.New("date_time is required")
	case r.Location == "":
		return errors.New("location is required")
	}
	return nil
}

// DinnerResponse represents the response for a dinner
type DinnerResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DateTime    string  `json:"date_time"`
	Location    string  `json:"location"`
	HostName    string  `json:"host_name"`
	HostPhone   string  `json:"host_phone"`
	ShareCode   string  `json:"share_code"`
	CreatedAt   string  `json:"created_at"`
}

// CreateDinnerResponse carries the new dinner plus the host's session token.
// The token is the host's only credential; it is returned exactly once.
type CreateDinnerResponse struct {
	Dinner       *DinnerResponse `json:"dinner"`
	SessionToken string          `json:"session_token"`
}

// ToResponse converts a Dinner model to a DinnerResponse DTO
func (d *Dinner) ToResponse() *DinnerResponse {
	return &DinnerResponse{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		DateTime:    d.DateTime.UTC().Format(time.RFC3339),
		Location:    d.Location,
		HostName:    d.HostName,
		HostPhone:   d.HostPhone,
		ShareCode:   d.ShareCode,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
