package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
)

// ItemInput carries the caller-editable item fields.
type ItemInput struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	IsChecked bool   `json:"isChecked"`
}

// AddItem creates an item on a list the user can view and broadcasts
// ItemAdded to the list's room. Classification is best effort and runs before
// the insert; the broadcast runs strictly after the write has succeeded.
func (s *Service) AddItem(ctx context.Context, userID string, listID uuid.UUID, input ItemInput) (*models.Item, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidRequest)
	}

	ok, err := s.resolver.CanView(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	item := &models.Item{
		ListID:    listID,
		Name:      input.Name,
		Quantity:  input.Quantity,
		IsChecked: input.IsChecked,
	}
	s.classifyItem(ctx, item)

	item, err = s.items.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	if err := s.itemNames.Record(ctx, userID, item.Name); err != nil {
		// autocomplete history only, never fails the mutation
		s.logger.WithError(err).Warn("Failed to record item name")
	}

	s.broadcaster.ItemAdded(listID, item)
	return item, nil
}

// UpdateItem replaces the caller-editable fields of an item and broadcasts
// ItemUpdated. The item is addressed through its list's visibility: users who
// cannot view the list get ErrNotFound.
func (s *Service) UpdateItem(ctx context.Context, userID string, itemID uuid.UUID, input ItemInput) (*models.Item, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidRequest)
	}

	item, err := s.requireVisibleItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Quantity = input.Quantity
	item.IsChecked = input.IsChecked

	item, err = s.items.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.broadcaster.ItemUpdated(item.ListID, item)
	return item, nil
}

// ToggleItem flips the checked state of an item and broadcasts ItemUpdated.
func (s *Service) ToggleItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.Item, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	item, err := s.requireVisibleItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.IsChecked = !item.IsChecked

	item, err = s.items.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle item: %w", err)
	}

	s.broadcaster.ItemUpdated(item.ListID, item)
	return item, nil
}

// DeleteItem removes an item and broadcasts ItemDeleted with the item id.
func (s *Service) DeleteItem(ctx context.Context, userID string, itemID uuid.UUID) error {
	if userID == "" {
		return ErrUnauthorized
	}

	item, err := s.requireVisibleItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.broadcaster.ItemDeleted(item.ListID, itemID)
	return nil
}

// requireVisibleItem loads an item and checks the caller can view its list.
// Both a missing item and a missing grant surface as ErrNotFound.
func (s *Service) requireVisibleItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	ok, err := s.resolver.CanView(ctx, userID, item.ListID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// classifyItem asks the external classifier for a category and resolves the
// predicted names against the lookup tables. Any failure is logged and the
// item is stored uncategorized, matching the classifier being optional.
func (s *Service) classifyItem(ctx context.Context, item *models.Item) {
	if s.classifier == nil || s.cats == nil {
		return
	}

	prediction, err := s.classifier.Classify(ctx, item.Name)
	if err != nil {
		s.logger.WithError(err).Warnf("Classification failed for %q", item.Name)
		return
	}
	if prediction == nil || prediction.PrimaryCategory == "" {
		return
	}

	category, err := s.cats.FindByName(ctx, prediction.PrimaryCategory)
	if err != nil || category == nil {
		if err != nil {
			s.logger.WithError(err).Warn("Category lookup failed")
		}
		return
	}
	item.CategoryID = &category.ID
	item.CategoryName = &category.Name

	if prediction.SubCategory == "" {
		return
	}
	sub, err := s.cats.FindSubByName(ctx, prediction.SubCategory, category.ID)
	if err != nil || sub == nil {
		if err != nil {
			s.logger.WithError(err).Warn("Sub-category lookup failed")
		}
		return
	}
	item.SubCategoryID = &sub.ID
	item.SubCategoryName = &sub.Name
}
