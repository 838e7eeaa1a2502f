// Package memory provides in-memory implementations of the repository
// interfaces. They back the unit tests and keep the access and service layers
// testable without a running postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository"
)

// Store holds every entity table behind one mutex. Fine for tests; the
// postgres implementations are what production runs on.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	lists     map[uuid.UUID]*models.List
	items     map[uuid.UUID]*models.Item
	shares    map[uuid.UUID]*models.ListShare
	families  map[uuid.UUID]*models.Family
	members   map[uuid.UUID]*models.FamilyMember
	cats      map[uuid.UUID]*models.Category
	subs      map[uuid.UUID]*models.SubCategory
	itemNames map[string]*models.PreviousItemName // key: userID + "\x00" + lower(name)
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*models.User),
		lists:     make(map[uuid.UUID]*models.List),
		items:     make(map[uuid.UUID]*models.Item),
		shares:    make(map[uuid.UUID]*models.ListShare),
		families:  make(map[uuid.UUID]*models.Family),
		members:   make(map[uuid.UUID]*models.FamilyMember),
		cats:      make(map[uuid.UUID]*models.Category),
		subs:      make(map[uuid.UUID]*models.SubCategory),
		itemNames: make(map[string]*models.PreviousItemName),
	}
}

// AddUser seeds a user account (identity issuance is external in production).
func (s *Store) AddUser(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[u.ID] = &cp
	return u
}

// Users returns the store as a repository.UserRepository.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Lists returns the store as a repository.ListRepository.
func (s *Store) Lists() repository.ListRepository { return (*listRepo)(s) }

// Items returns the store as a repository.ItemRepository.
func (s *Store) Items() repository.ItemRepository { return (*itemRepo)(s) }

// Shares returns the store as a repository.ShareRepository.
func (s *Store) Shares() repository.ShareRepository { return (*shareRepo)(s) }

// Families returns the store as a repository.FamilyRepository.
func (s *Store) Families() repository.FamilyRepository { return (*familyRepo)(s) }

// Categories returns the store as a repository.CategoryRepository.
func (s *Store) Categories() repository.CategoryRepository { return (*categoryRepo)(s) }

// ItemNames returns the store as a repository.ItemNameRepository.
func (s *Store) ItemNames() repository.ItemNameRepository { return (*itemNameRepo)(s) }

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type listRepo Store

func (r *listRepo) Create(_ context.Context, list *models.List) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	cp := *list
	r.lists[list.ID] = &cp
	return list, nil
}

func (r *listRepo) GetByID(_ context.Context, id uuid.UUID) (*models.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.lists[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *listRepo) GetOwnedBy(_ context.Context, userID string) ([]*models.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.List
	for _, l := range r.lists {
		if l.OwnerUserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sortListsByCreatedDesc(out)
	return out, nil
}

func (r *listRepo) Update(_ context.Context, list *models.List) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[list.ID]; !ok {
		return nil, fmt.Errorf("list with ID %s not found", list.ID)
	}
	list.UpdatedAt = time.Now()
	cp := *list
	r.lists[list.ID] = &cp
	return list, nil
}

func (r *listRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[id]; !ok {
		return fmt.Errorf("list with ID %s not found", id)
	}
	delete(r.lists, id)
	// cascade, mirroring the FK constraints
	for iid, it := range r.items {
		if it.ListID == id {
			delete(r.items, iid)
		}
	}
	for sid, sh := range r.shares {
		if sh.ListID == id {
			delete(r.shares, sid)
		}
	}
	return nil
}

type itemRepo Store

func (r *itemRepo) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.AddedAt = time.Now()
	cp := *item
	r.items[item.ID] = &cp
	return item, nil
}

func (r *itemRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if it, ok := r.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *itemRepo) GetByList(_ context.Context, listID uuid.UUID) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Item
	for _, it := range r.items {
		if it.ListID == listID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *itemRepo) Update(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, fmt.Errorf("item with ID %s not found", item.ID)
	}
	cp := *item
	r.items[item.ID] = &cp
	return item, nil
}

func (r *itemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item with ID %s not found", id)
	}
	delete(r.items, id)
	return nil
}

type shareRepo Store

func (r *shareRepo) Create(_ context.Context, share *models.ListShare) (*models.ListShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	share.CreatedAt = time.Now()
	cp := *share
	r.shares[share.ID] = &cp
	return share, nil
}

func (r *shareRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ListShare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sh, ok := r.shares[id]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, nil
}

func (r *shareRepo) GetForList(_ context.Context, listID uuid.UUID) ([]*models.ListShare, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.ListShare
	for _, sh := range r.shares {
		if sh.ListID == listID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *shareRepo) GetListIDsForUser(_ context.Context, userID string) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []uuid.UUID
	for _, sh := range r.shares {
		if sh.TargetUserID != nil && *sh.TargetUserID == userID {
			out = append(out, sh.ListID)
		}
	}
	return out, nil
}

func (r *shareRepo) GetListIDsForFamilies(_ context.Context, familyIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	famSet := make(map[uuid.UUID]struct{}, len(familyIDs))
	for _, id := range familyIDs {
		famSet[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, sh := range r.shares {
		if sh.TargetFamilyID == nil {
			continue
		}
		if _, ok := famSet[*sh.TargetFamilyID]; ok {
			out = append(out, sh.ListID)
		}
	}
	return out, nil
}

func (r *shareRepo) ExistsForUser(_ context.Context, listID uuid.UUID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sh := range r.shares {
		if sh.ListID == listID && sh.TargetUserID != nil && *sh.TargetUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *shareRepo) ExistsForFamily(_ context.Context, listID, familyID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sh := range r.shares {
		if sh.ListID == listID && sh.TargetFamilyID != nil && *sh.TargetFamilyID == familyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *shareRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shares[id]; !ok {
		return fmt.Errorf("list share with ID %s not found", id)
	}
	delete(r.shares, id)
	return nil
}

type familyRepo Store

func (r *familyRepo) Create(_ context.Context, family *models.Family) (*models.Family, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if family.ID == uuid.Nil {
		family.ID = uuid.New()
	}
	now := time.Now()
	family.CreatedAt = now
	family.UpdatedAt = now
	cp := *family
	r.families[family.ID] = &cp
	return family, nil
}

func (r *familyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.families[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (r *familyRepo) Update(_ context.Context, family *models.Family) (*models.Family, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[family.ID]; !ok {
		return nil, fmt.Errorf("family with ID %s not found", family.ID)
	}
	family.UpdatedAt = time.Now()
	cp := *family
	r.families[family.ID] = &cp
	return family, nil
}

func (r *familyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[id]; !ok {
		return fmt.Errorf("family with ID %s not found", id)
	}
	delete(r.families, id)
	for mid, m := range r.members {
		if m.FamilyID == id {
			delete(r.members, mid)
		}
	}
	for sid, sh := range r.shares {
		if sh.TargetFamilyID != nil && *sh.TargetFamilyID == id {
			delete(r.shares, sid)
		}
	}
	return nil
}

func (r *familyRepo) AddMember(_ context.Context, familyID uuid.UUID, userID, role string) (*models.FamilyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.FamilyID == familyID && m.UserID == userID {
			return nil, fmt.Errorf("user %s is already a member of family %s", userID, familyID)
		}
	}
	member := &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: familyID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	cp := *member
	r.members[member.ID] = &cp
	return member, nil
}

func (r *familyRepo) RemoveMember(_ context.Context, familyID uuid.UUID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mid, m := range r.members {
		if m.FamilyID == familyID && m.UserID == userID {
			delete(r.members, mid)
			return nil
		}
	}
	return fmt.Errorf("user %s is not a member of family %s", userID, familyID)
}

func (r *familyRepo) GetMemberships(_ context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.FamilyMember
	for _, m := range r.members {
		if m.FamilyID == familyID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *familyRepo) GetMembershipsForUser(_ context.Context, userID string) ([]*models.FamilyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.FamilyMember
	for _, m := range r.members {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *familyRepo) GetOwnedBy(_ context.Context, userID string) ([]*models.Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Family
	for _, f := range r.families {
		if f.OwnerUserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *familyRepo) HasMember(_ context.Context, familyID uuid.UUID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.FamilyID == familyID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type categoryRepo Store

func (r *categoryRepo) UpsertCategory(_ context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	cat := &models.Category{ID: uuid.New(), Name: name}
	r.cats[cat.ID] = cat
	cp := *cat
	return &cp, nil
}

func (r *categoryRepo) UpsertSubCategory(_ context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sc := range r.subs {
		if sc.ParentCategoryID == parentID && strings.EqualFold(sc.Name, name) {
			cp := *sc
			return &cp, nil
		}
	}
	sub := &models.SubCategory{ID: uuid.New(), Name: name, ParentCategoryID: parentID}
	r.subs[sub.ID] = sub
	cp := *sub
	return &cp, nil
}

func (r *categoryRepo) GetAll(_ context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Category
	for _, c := range r.cats {
		cp := *c
		cp.SubCategories = nil
		for _, sc := range r.subs {
			if sc.ParentCategoryID == c.ID {
				scp := *sc
				cp.SubCategories = append(cp.SubCategories, &scp)
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) FindByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cats {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *categoryRepo) FindSubByName(_ context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sc := range r.subs {
		if sc.ParentCategoryID == parentID && strings.EqualFold(sc.Name, name) {
			cp := *sc
			return &cp, nil
		}
	}
	return nil, nil
}

type itemNameRepo Store

func (r *itemNameRepo) Record(_ context.Context, userID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userID + "\x00" + strings.ToLower(name)
	if existing, ok := r.itemNames[key]; ok {
		existing.LastUsedAt = time.Now()
		return nil
	}
	r.itemNames[key] = &models.PreviousItemName{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		LastUsedAt: time.Now(),
	}
	return nil
}

func (r *itemNameRepo) GetForUser(_ context.Context, userID, prefix string, limit int) ([]*models.PreviousItemName, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	var out []*models.PreviousItemName
	for _, n := range r.itemNames {
		if n.UserID == userID && strings.HasPrefix(strings.ToLower(n.Name), strings.ToLower(prefix)) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortListsByCreatedDesc(lists []*models.List) {
	sort.Slice(lists, func(i, j int) bool { return lists[i].CreatedAt.After(lists[j].CreatedAt) })
}
