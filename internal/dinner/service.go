package dinner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrDinnerNotFound  = errors.New("dinner not found")
	ErrInvalidDateTime = errors.New("date_time must be a valid RFC 3339 timestamp")
	ErrCodeExhausted   = errors.New("could not generate a unique share code")
)

// shareCodeAttempts bounds the retry loop on share-code collisions.
const shareCodeAttempts = 5

// Service handles dinner business logic
type Service struct {
	repo *Repository

	// newShareCode is swappable for tests
	newShareCode func() (string, error)
}

// NewService creates a new dinner service
func NewService(repo *Repository) *Service {
	return &Service{
		repo:         repo,
		newShareCode: NewShareCode,
	}
}

// Create sets up a new dinner: it generates a share code and the host's
// session token, then creates the dinner, its default categories, and the
// host's guest record atomically. Share-code collisions are retried with a
// fresh code a bounded number of times.
func (s *Service) Create(ctx context.Context, req *CreateDinnerRequest) (*Dinner, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	dateTime, err := parseDateTime(req.DateTime)
	if err != nil {
		return nil, "", err
	}

	req.Description = normalizeDescription(req.Description)
	sessionToken := uuid.NewString()

	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		shareCode, err := s.newShareCode()
		if err != nil {
			return nil, "", err
		}

		d, err := s.repo.Create(ctx, req, dateTime, shareCode, sessionToken)
		if errors.Is(err, ErrShareCodeTaken) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return d, sessionToken, nil
	}

	return nil, "", ErrCodeExhausted
}

// GetByShareCode retrieves a dinner by its public share code
func (s *Service) GetByShareCode(ctx context.Context, shareCode string) (*Dinner, error) {
	d, err := s.repo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDinnerNotFound
	}
	return d, nil
}

// Update modifies a dinner's title, date, location, and description
func (s *Service) Update(ctx context.Context, id string, req *UpdateDinnerRequest) (*Dinner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dateTime, err := parseDateTime(req.DateTime)
	if err != nil {
		return nil, err
	}

	req.Description = normalizeDescription(req.Description)

	d, err := s.repo.Update(ctx, id, req, dateTime)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDinnerNotFound
	}
	return d, nil
}

// parseDateTime normalizes the submitted timestamp to an absolute UTC instant
func parseDateTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t.UTC(), nil
}

// normalizeDescription collapses an empty description to absent
func normalizeDescription(desc *string) *string {
	if desc != nil && *desc == "" {
		return nil
	}
	return desc
}
