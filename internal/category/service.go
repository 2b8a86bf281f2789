package category

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNegativeQuota    = errors.New("desired_count must be non-negative")
)

// Notifier broadcasts a "collection changed" signal to everyone viewing a dinner
type Notifier interface {
	Notify(dinnerID, collection string)
}

// Service handles category business logic
type Service struct {
	repo     *Repository
	notifier Notifier
}

// NewService creates a new category service
func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// ListByDinner retrieves a dinner's categories in sort order with item counts
func (s *Service) ListByDinner(ctx context.Context, dinnerID string) ([]*CategoryWithCount, error) {
	return s.repo.ListByDinner(ctx, dinnerID)
}

// Add creates a category at the next sort position with no quota
func (s *Service) Add(ctx context.Context, dinnerID string, req *CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxSort, err := s.repo.MaxSortOrder(ctx, dinnerID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, dinnerID, req.Name, maxSort+1)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(dinnerID, "categories")
	return c, nil
}

// UpdateQuota sets or clears a category's desired count
func (s *Service) UpdateQuota(ctx context.Context, dinnerID, categoryID string, desiredCount *int) (*CategoryWithCount, error) {
	if desiredCount != nil && *desiredCount < 0 {
		return nil, ErrNegativeQuota
	}

	c, err := s.getOwned(ctx, dinnerID, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDesiredCount(ctx, c.ID, desiredCount); err != nil {
		return nil, err
	}
	c.DesiredCount = desiredCount

	count, err := s.repo.CountItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(dinnerID, "categories")
	return &CategoryWithCount{Category: *c, ItemCount: count}, nil
}

// Delete removes a category; its items become uncategorized
func (s *Service) Delete(ctx context.Context, dinnerID, categoryID string) error {
	c, err := s.getOwned(ctx, dinnerID, categoryID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}

	s.notifier.Notify(dinnerID, "categories")
	return nil
}

// getOwned loads a category and verifies it belongs to the given dinner
func (s *Service) getOwned(ctx context.Context, dinnerID, categoryID string) (*Category, error) {
	c, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.DinnerID != dinnerID {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}
