package item

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotItemOwner = errors.New("only the guest bringing this item can change it")
)

// Notifier broadcasts a "collection changed" signal to everyone viewing a dinner
type Notifier interface {
	Notify(dinnerID, collection string)
}

// Service handles item business logic
type Service struct {
	repo     *Repository
	notifier Notifier
}

// NewService creates a new item service
func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// ListByDinner retrieves a dinner's items in creation order with tags joined
func (s *Service) ListByDinner(ctx context.Context, dinnerID string) ([]*Item, error) {
	return s.repo.ListByDinner(ctx, dinnerID)
}

// Add creates an item owned by the given guest
func (s *Service) Add(ctx context.Context, dinnerID, guestID string, req *ItemRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Description = normalizeDescription(req.Description)
	req.CategoryID = normalizeCategoryID(req.CategoryID)

	it, err := s.repo.Create(ctx, dinnerID, guestID, req)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(dinnerID, "items")
	return it, nil
}

// Edit updates an item's fields and fully replaces its dietary tag set.
// Only the guest who is bringing the item may edit it.
func (s *Service) Edit(ctx context.Context, dinnerID, guestID, itemID string, req *ItemRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Description = normalizeDescription(req.Description)
	req.CategoryID = normalizeCategoryID(req.CategoryID)

	if err := s.authorize(ctx, dinnerID, guestID, itemID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, itemID, req); err != nil {
		return nil, err
	}

	s.notifier.Notify(dinnerID, "items")
	return s.repo.GetByID(ctx, itemID)
}

// Delete removes an item. Only the guest who is bringing it may delete it.
func (s *Service) Delete(ctx context.Context, dinnerID, guestID, itemID string) error {
	if err := s.authorize(ctx, dinnerID, guestID, itemID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.notifier.Notify(dinnerID, "items")
	return nil
}

// authorize verifies the item exists in this dinner and belongs to the actor
func (s *Service) authorize(ctx context.Context, dinnerID, guestID, itemID string) error {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if it == nil || it.DinnerID != dinnerID {
		return ErrItemNotFound
	}
	if it.GuestID != guestID {
		return ErrNotItemOwner
	}
	return nil
}

// normalizeDescription collapses an empty description to absent
func normalizeDescription(desc *string) *string {
	if desc != nil && *desc == "" {
		return nil
	}
	return desc
}

// normalizeCategoryID collapses an empty category reference to uncategorized
func normalizeCategoryID(id *string) *string {
	if id != nil && *id == "" {
		return nil
	}
	return id
}
