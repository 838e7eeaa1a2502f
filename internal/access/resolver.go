// Package access computes who may see which lists. The effective viewer set
// of a list is its owner, the targets of its direct shares, the members of
// any family it is shared with, and the owners of those families. Shares and
// memberships change independently of list content, so every answer is
// recomputed from storage on every call; nothing here is cached.
package access

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository"
)

// Resolver answers visibility and ownership questions. It is stateless; all
// methods are safe for concurrent use.
type Resolver struct {
	lists    repository.ListRepository
	shares   repository.ShareRepository
	families repository.FamilyRepository
}

// NewResolver creates a resolver over the given repositories.
func NewResolver(lists repository.ListRepository, shares repository.ShareRepository, families repository.FamilyRepository) *Resolver {
	return &Resolver{lists: lists, shares: shares, families: families}
}

// ListsVisibleTo returns every list the user may view: owned, shared directly,
// or shared with a family the user belongs to or owns. Deduplicated by list
// id and ordered by creation time descending.
func (r *Resolver) ListsVisibleTo(ctx context.Context, userID string) ([]*models.List, error) {
	owned, err := r.lists.GetOwnedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned lists: %w", err)
	}

	directIDs, err := r.shares.GetListIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load direct shares: %w", err)
	}

	familyIDs, err := r.familiesOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	familyListIDs, err := r.shares.GetListIDsForFamilies(ctx, familyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load family shares: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(owned))
	visible := make([]*models.List, 0, len(owned)+len(directIDs)+len(familyListIDs))
	for _, l := range owned {
		seen[l.ID] = struct{}{}
		visible = append(visible, l)
	}
	for _, id := range append(directIDs, familyListIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		list, err := r.lists.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load shared list %s: %w", id, err)
		}
		if list == nil {
			// share row outlived its list; skip
			continue
		}
		visible = append(visible, list)
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible, nil
}

// CanView reports whether the user may view the list. It returns false both
// when the list does not exist and when it exists without a grant for this
// user, so callers cannot distinguish the two.
func (r *Resolver) CanView(ctx context.Context, userID string, listID uuid.UUID) (bool, error) {
	list, err := r.lists.GetByID(ctx, listID)
	if err != nil {
		return false, fmt.Errorf("failed to load list: %w", err)
	}
	if list == nil {
		return false, nil
	}
	if list.OwnerUserID == userID {
		return true, nil
	}

	shares, err := r.shares.GetForList(ctx, listID)
	if err != nil {
		return false, fmt.Errorf("failed to load shares: %w", err)
	}
	for _, share := range shares {
		if share.TargetUserID != nil && *share.TargetUserID == userID {
			return true, nil
		}
		if share.TargetFamilyID != nil {
			ok, err := r.inFamily(ctx, *share.TargetFamilyID, userID)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsOwner reports whether the user owns the list. Missing lists report false.
func (r *Resolver) IsOwner(ctx context.Context, userID string, listID uuid.UUID) (bool, error) {
	list, err := r.lists.GetByID(ctx, listID)
	if err != nil {
		return false, fmt.Errorf("failed to load list: %w", err)
	}
	return list != nil && list.OwnerUserID == userID, nil
}

// familiesOf collects ids of families the user is a member of or owns. The
// family owner has no membership row but still counts as a viewer of
// everything shared with the family.
func (r *Resolver) familiesOf(ctx context.Context, userID string) ([]uuid.UUID, error) {
	memberships, err := r.families.GetMembershipsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	owned, err := r.families.GetOwnedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned families: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(memberships)+len(owned))
	ids := make([]uuid.UUID, 0, len(memberships)+len(owned))
	for _, m := range memberships {
		if _, ok := seen[m.FamilyID]; !ok {
			seen[m.FamilyID] = struct{}{}
			ids = append(ids, m.FamilyID)
		}
	}
	for _, f := range owned {
		if _, ok := seen[f.ID]; !ok {
			seen[f.ID] = struct{}{}
			ids = append(ids, f.ID)
		}
	}
	return ids, nil
}

// inFamily reports whether the user is a member or the owner of the family.
func (r *Resolver) inFamily(ctx context.Context, familyID uuid.UUID, userID string) (bool, error) {
	ok, err := r.families.HasMember(ctx, familyID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	if ok {
		return true, nil
	}
	family, err := r.families.GetByID(ctx, familyID)
	if err != nil {
		return false, fmt.Errorf("failed to load family: %w", err)
	}
	return family != nil && family.OwnerUserID == userID, nil
}
