package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
)

// CreateFamily creates a family owned by the acting user.
func (s *Service) CreateFamily(ctx context.Context, userID, name string) (*models.Family, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: family name is required", ErrInvalidRequest)
	}

	family, err := s.families.Create(ctx, &models.Family{OwnerUserID: userID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	s.logger.Infof("Created family %s (owner %s)", family.ID, userID)
	return family, nil
}

// FamiliesForUser returns families the user owns or is a member of, newest
// first.
func (s *Service) FamiliesForUser(ctx context.Context, userID string) ([]*models.Family, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	owned, err := s.families.GetOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.families.GetMembershipsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(owned))
	out := make([]*models.Family, 0, len(owned)+len(memberships))
	for _, f := range owned {
		seen[f.ID] = struct{}{}
		out = append(out, f)
	}
	for _, m := range memberships {
		if _, ok := seen[m.FamilyID]; ok {
			continue
		}
		seen[m.FamilyID] = struct{}{}
		family, err := s.families.GetByID(ctx, m.FamilyID)
		if err != nil {
			return nil, err
		}
		if family != nil {
			out = append(out, family)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// RenameFamily updates the family name. Owner only.
func (s *Service) RenameFamily(ctx context.Context, userID string, familyID uuid.UUID, name string) (*models.Family, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: family name is required", ErrInvalidRequest)
	}

	family, err := s.requireOwnedFamily(ctx, userID, familyID)
	if err != nil {
		return nil, err
	}

	family.Name = name
	return s.families.Update(ctx, family)
}

// DeleteFamily removes a family, its memberships and its family shares.
// Owner only.
func (s *Service) DeleteFamily(ctx context.Context, userID string, familyID uuid.UUID) error {
	if userID == "" {
		return ErrUnauthorized
	}

	if _, err := s.requireOwnedFamily(ctx, userID, familyID); err != nil {
		return err
	}

	if err := s.families.Delete(ctx, familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}

	s.logger.Infof("Deleted family %s (owner %s)", familyID, userID)
	return nil
}

// AddFamilyMember adds a user to a family. Owner only; duplicate memberships
// are rejected with ErrConflict and adding the owner is invalid since they
// already view everything shared with the family.
func (s *Service) AddFamilyMember(ctx context.Context, actingUserID string, familyID uuid.UUID, userIDToAdd string) (*models.FamilyMember, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}

	family, err := s.requireOwnedFamily(ctx, actingUserID, familyID)
	if err != nil {
		return nil, err
	}
	if userIDToAdd == family.OwnerUserID {
		return nil, fmt.Errorf("%w: the family owner is implicitly a member", ErrInvalidRequest)
	}

	user, err := s.users.GetByID(ctx, userIDToAdd)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user to add not found", ErrNotFound)
	}

	already, err := s.families.HasMember(ctx, familyID, userIDToAdd)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("%w: user is already a member of this family", ErrConflict)
	}

	member, err := s.families.AddMember(ctx, familyID, userIDToAdd, "member")
	if err != nil {
		return nil, fmt.Errorf("failed to add family member: %w", err)
	}
	member.User = user

	s.logger.Infof("Added user %s to family %s", userIDToAdd, familyID)
	return member, nil
}

// RemoveFamilyMember removes a membership. The family owner may remove any
// member; a member may remove themselves.
func (s *Service) RemoveFamilyMember(ctx context.Context, actingUserID string, familyID uuid.UUID, userIDToRemove string) error {
	if actingUserID == "" {
		return ErrUnauthorized
	}

	family, err := s.families.GetByID(ctx, familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return fmt.Errorf("%w: family not found", ErrNotFound)
	}

	if actingUserID != family.OwnerUserID && actingUserID != userIDToRemove {
		return fmt.Errorf("%w: only the family owner may remove other members", ErrUnauthorized)
	}

	member, err := s.families.HasMember(ctx, familyID, userIDToRemove)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: membership not found", ErrNotFound)
	}

	if err := s.families.RemoveMember(ctx, familyID, userIDToRemove); err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}

	s.logger.Infof("Removed user %s from family %s", userIDToRemove, familyID)
	return nil
}

// FamilyMembers lists the memberships of a family with user profiles
// resolved. Visible to the owner and to members.
func (s *Service) FamilyMembers(ctx context.Context, actingUserID string, familyID uuid.UUID) ([]*models.FamilyMember, error) {
	if actingUserID == "" {
		return nil, ErrUnauthorized
	}

	family, err := s.families.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, fmt.Errorf("%w: family not found", ErrNotFound)
	}

	if family.OwnerUserID != actingUserID {
		member, err := s.families.HasMember(ctx, familyID, actingUserID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("%w: family not found", ErrNotFound)
		}
	}

	members, err := s.families.GetMemberships(ctx, familyID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		user, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		m.User = user
	}
	return members, nil
}

func (s *Service) requireOwnedFamily(ctx context.Context, userID string, familyID uuid.UUID) (*models.Family, error) {
	family, err := s.families.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, fmt.Errorf("%w: family not found", ErrNotFound)
	}
	if family.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: only the family owner may manage it", ErrUnauthorized)
	}
	return family, nil
}
