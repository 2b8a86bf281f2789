package guest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrAlreadyRsvped = errors.New("this device has already RSVP'd to this dinner")
)

// Notifier broadcasts a "collection changed" signal to everyone viewing a dinner
type Notifier interface {
	Notify(dinnerID, collection string)
}

// Service handles guest business logic
type Service struct {
	repo     *Repository
	notifier Notifier
}

// NewService creates a new guest service
func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Rsvp creates a non-host guest with a fresh session token. A device that
// already holds a token for this dinner may not RSVP again.
func (s *Service) Rsvp(ctx context.Context, dinnerID string, req *RsvpRequest, existingToken string) (*Guest, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	if existingToken != "" {
		existing, err := s.repo.GetByToken(ctx, dinnerID, existingToken)
		if err != nil {
			return nil, "", err
		}
		if existing != nil {
			return nil, "", ErrAlreadyRsvped
		}
	}

	sessionToken := uuid.NewString()
	g, err := s.repo.Create(ctx, dinnerID, req, sessionToken)
	if err != nil {
		return nil, "", err
	}

	s.notifier.Notify(dinnerID, "guests")
	return g, sessionToken, nil
}

// ListByDinner retrieves all guests of a dinner ordered by RSVP time
func (s *Service) ListByDinner(ctx context.Context, dinnerID string) ([]*Guest, error) {
	return s.repo.ListByDinner(ctx, dinnerID)
}

// GetByToken retrieves the guest holding the given session token, or nil for
// an anonymous viewer.
func (s *Service) GetByToken(ctx context.Context, dinnerID, token string) (*Guest, error) {
	return s.repo.GetByToken(ctx, dinnerID, token)
}

// ResolveToken maps a session token to a guest id and host flag. An unknown
// token resolves to an anonymous viewer, not an error.
func (s *Service) ResolveToken(ctx context.Context, dinnerID, token string) (string, bool, error) {
	g, err := s.repo.GetByToken(ctx, dinnerID, token)
	if err != nil {
		return "", false, err
	}
	if g == nil {
		return "", false, nil
	}
	return g.ID, g.IsHost, nil
}
