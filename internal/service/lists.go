package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
)

// CreateList creates a list owned by the acting user.
func (s *Service) CreateList(ctx context.Context, userID, name string) (*models.List, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: list name is required", ErrInvalidRequest)
	}

	list, err := s.lists.Create(ctx, &models.List{OwnerUserID: userID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	s.logger.Infof("Created list %s for user %s", list.ID, userID)
	return list, nil
}

// ListsForUser returns every list visible to the user, owned and shared,
// newest first.
func (s *Service) ListsForUser(ctx context.Context, userID string) ([]*models.List, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.resolver.ListsVisibleTo(ctx, userID)
}

// GetList returns one list with its items. A list the user cannot view is
// reported as not found, whether or not it exists.
func (s *Service) GetList(ctx context.Context, userID string, listID uuid.UUID) (*models.List, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	ok, err := s.resolver.CanView(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrNotFound
	}

	items, err := s.items.GetByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	list.Items = items
	return list, nil
}

// RenameList updates the list name. Owner only.
func (s *Service) RenameList(ctx context.Context, userID string, listID uuid.UUID, name string) (*models.List, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: list name is required", ErrInvalidRequest)
	}

	list, err := s.requireOwnedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = name
	return s.lists.Update(ctx, list)
}

// DeleteList removes the list together with its items and shares. Owner only.
func (s *Service) DeleteList(ctx context.Context, userID string, listID uuid.UUID) error {
	if userID == "" {
		return ErrUnauthorized
	}

	if _, err := s.requireOwnedList(ctx, userID, listID); err != nil {
		return err
	}

	if err := s.lists.Delete(ctx, listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	s.logger.Infof("Deleted list %s (owner %s)", listID, userID)
	return nil
}

// requireOwnedList loads a list and verifies ownership. Non-owners get
// ErrNotFound, never a hint the list exists.
func (s *Service) requireOwnedList(ctx context.Context, userID string, listID uuid.UUID) (*models.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil || list.OwnerUserID != userID {
		return nil, ErrNotFound
	}
	return list, nil
}
