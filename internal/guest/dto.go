package guest

import (
	"errors"
	"time"
)

// RsvpRequest represents the request to join a dinner
type RsvpRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Validate checks the required RSVP fields
func (r *RsvpRequest) Validate() error {
	switch {
	case r.Name == "":
		return errors.New("name is required")
	case r.Phone == "":
		return errors.New("phone is required")
	}
	return nil
}

// GuestResponse represents a guest in API responses
type GuestResponse struct {
	ID       string `json:"id"`
	DinnerID string `json:"dinner_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	IsHost   bool   `json:"is_host"`
	RsvpAt   string `json:"rsvp_at"`
}

// RsvpResponse carries the new guest plus their session token. The token is
// the guest's only credential; it is returned exactly once.
type RsvpResponse struct {
	Guest        *GuestResponse `json:"guest"`
	SessionToken string         `json:"session_token"`
}

// ToResponse converts a Guest model to a GuestResponse DTO
func (g *Guest) ToResponse() *GuestResponse {
	return &GuestResponse{
		ID:       g.ID,
		DinnerID: g.DinnerID,
		Name:     g.Name,
		Phone:    g.Phone,
		IsHost:   g.IsHost,
		RsvpAt:   g.RsvpAt.UTC().Format(time.RFC3339),
	}
}
