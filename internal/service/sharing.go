package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
)

// ShareTarget names the recipient of a share: exactly one of UserID or
// FamilyID must be set.
type ShareTarget struct {
	UserID   *string
	FamilyID *uuid.UUID
}

// CreateShare grants view access to a list. Only the list owner may share,
// the owner cannot be a target on their own list, and duplicate grants are
// rejected with ErrConflict. The returned share has its relations resolved.
func (s *Service) CreateShare(ctx context.Context, actingUserID string, listID uuid.UUID, target ShareTarget) (*models.ListShare, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}

	if target.UserID == nil && target.FamilyID == nil {
		return nil, fmt.Errorf("%w: either a user or a family target must be provided", ErrInvalidRequest)
	}
	if target.UserID != nil && target.FamilyID != nil {
		return nil, fmt.Errorf("%w: cannot target both a user and a family", ErrInvalidRequest)
	}

	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: shopping list not found", ErrNotFound)
	}
	if list.OwnerUserID != actingUserID {
		return nil, fmt.Errorf("%w: only the list owner may manage shares", ErrUnauthorized)
	}

	share := &models.ListShare{ListID: listID}

	if target.UserID != nil {
		if *target.UserID == list.OwnerUserID {
			return nil, fmt.Errorf("%w: owner already has access to their own list", ErrInvalidRequest)
		}
		user, err := s.users.GetByID(ctx, *target.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: user to share with not found", ErrNotFound)
		}
		exists, err := s.shares.ExistsForUser(ctx, listID, *target.UserID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: list is already shared with this user", ErrConflict)
		}
		share.TargetUserID = target.UserID
		share.User = user
	} else {
		family, err := s.families.GetByID(ctx, *target.FamilyID)
		if err != nil {
			return nil, err
		}
		if family == nil {
			return nil, fmt.Errorf("%w: family to share with not found", ErrNotFound)
		}
		exists, err := s.shares.ExistsForFamily(ctx, listID, *target.FamilyID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: list is already shared with this family", ErrConflict)
		}
		share.TargetFamilyID = target.FamilyID
		share.Family = family
	}

	share, err = s.shares.Create(ctx, share)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}
	share.List = list

	s.logger.Infof("Created share %s on list %s", share.ID, listID)
	return share, nil
}

// RevokeShare deletes a share. Only the owner of the share's list may revoke.
// No event is broadcast: sharing changes are not live-pushed, and a revoked
// viewer's open session keeps receiving room events until it leaves or
// disconnects (join-time checks close the window on the next navigation).
func (s *Service) RevokeShare(ctx context.Context, actingUserID string, shareID uuid.UUID) error {
	if actingUserID == "" {
		return ErrUnauthorized
	}

	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share == nil {
		return fmt.Errorf("%w: share record not found", ErrNotFound)
	}

	list, err := s.lists.GetByID(ctx, share.ListID)
	if err != nil {
		return err
	}
	if list == nil || list.OwnerUserID != actingUserID {
		return fmt.Errorf("%w: only the list owner may revoke shares", ErrUnauthorized)
	}

	if err := s.shares.Delete(ctx, shareID); err != nil {
		return fmt.Errorf("failed to revoke share: %w", err)
	}

	s.logger.Infof("Revoked share %s on list %s", shareID, share.ListID)
	return nil
}

// GetShare returns one share record. Viewable by the list owner, the direct
// target user, or any member (or the owner) of the target family.
func (s *Service) GetShare(ctx context.Context, actingUserID string, shareID uuid.UUID) (*models.ListShare, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}

	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, fmt.Errorf("%w: share record not found", ErrNotFound)
	}

	list, err := s.lists.GetByID(ctx, share.ListID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: share record not found", ErrNotFound)
	}
	share.List = list

	visible := list.OwnerUserID == actingUserID
	if !visible && share.TargetUserID != nil && *share.TargetUserID == actingUserID {
		visible = true
	}
	if !visible && share.TargetFamilyID != nil {
		member, err := s.families.HasMember(ctx, *share.TargetFamilyID, actingUserID)
		if err != nil {
			return nil, err
		}
		if !member {
			family, err := s.families.GetByID(ctx, *share.TargetFamilyID)
			if err != nil {
				return nil, err
			}
			member = family != nil && family.OwnerUserID == actingUserID
		}
		visible = member
	}
	if !visible {
		return nil, fmt.Errorf("%w: share record not found", ErrNotFound)
	}

	return s.resolveShareRelations(ctx, share)
}

// SharesForList returns every share on a list. Owner only.
func (s *Service) SharesForList(ctx context.Context, actingUserID string, listID uuid.UUID) ([]*models.ListShare, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}

	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: shopping list not found", ErrNotFound)
	}
	if list.OwnerUserID != actingUserID {
		return nil, fmt.Errorf("%w: only the list owner may view its shares", ErrUnauthorized)
	}

	shares, err := s.shares.GetForList(ctx, listID)
	if err != nil {
		return nil, err
	}
	for _, share := range shares {
		if _, err := s.resolveShareRelations(ctx, share); err != nil {
			return nil, err
		}
	}
	return shares, nil
}

func (s *Service) resolveShareRelations(ctx context.Context, share *models.ListShare) (*models.ListShare, error) {
	if share.TargetUserID != nil && share.User == nil {
		user, err := s.users.GetByID(ctx, *share.TargetUserID)
		if err != nil {
			return nil, err
		}
		share.User = user
	}
	if share.TargetFamilyID != nil && share.Family == nil {
		family, err := s.families.GetByID(ctx, *share.TargetFamilyID)
		if err != nil {
			return nil, err
		}
		share.Family = family
	}
	return share, nil
}
