package access_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharelist/sharelist/internal/access"
	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	resolver *access.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:    store,
		resolver: access.NewResolver(store.Lists(), store.Shares(), store.Families()),
	}
}

func (f *fixture) addUser(t *testing.T, id string) *models.User {
	t.Helper()
	return f.store.AddUser(&models.User{ID: id, Email: id + "@example.com"})
}

func (f *fixture) addList(t *testing.T, ownerID, name string) *models.List {
	t.Helper()
	list, err := f.store.Lists().Create(context.Background(), &models.List{
		OwnerUserID: ownerID,
		Name:        name,
	})
	require.NoError(t, err)
	return list
}

func (f *fixture) shareWithUser(t *testing.T, listID uuid.UUID, userID string) *models.ListShare {
	t.Helper()
	share, err := f.store.Shares().Create(context.Background(), &models.ListShare{
		ListID:       listID,
		TargetUserID: &userID,
	})
	require.NoError(t, err)
	return share
}

func (f *fixture) shareWithFamily(t *testing.T, listID, familyID uuid.UUID) *models.ListShare {
	t.Helper()
	share, err := f.store.Shares().Create(context.Background(), &models.ListShare{
		ListID:         listID,
		TargetFamilyID: &familyID,
	})
	require.NoError(t, err)
	return share
}

func (f *fixture) addFamily(t *testing.T, ownerID, name string, memberIDs ...string) *models.Family {
	t.Helper()
	ctx := context.Background()
	family, err := f.store.Families().Create(ctx, &models.Family{
		OwnerUserID: ownerID,
		Name:        name,
	})
	require.NoError(t, err)
	for _, id := range memberIDs {
		_, err := f.store.Families().AddMember(ctx, family.ID, id, "member")
		require.NoError(t, err)
	}
	return family
}

func TestCanViewOwner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	list := f.addList(t, "alice", "Groceries")

	ok, err := f.resolver.CanView(context.Background(), "alice", list.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewDirectShare(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	list := f.addList(t, "alice", "Groceries")

	ctx := context.Background()

	ok, err := f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.False(t, ok, "no grant yet")

	f.shareWithUser(t, list.ID, "bob")

	ok, err = f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewFamilyShare(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	f.addUser(t, "carol")
	f.addUser(t, "dave")
	list := f.addList(t, "alice", "Groceries")
	family := f.addFamily(t, "carol", "Smiths", "bob")
	f.shareWithFamily(t, list.ID, family.ID)

	ctx := context.Background()

	ok, err := f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.True(t, ok, "family member sees family-shared list")

	// The family owner has no membership row but is still a viewer.
	ok, err = f.resolver.CanView(ctx, "carol", list.ID)
	require.NoError(t, err)
	assert.True(t, ok, "family owner sees family-shared list")

	ok, err = f.resolver.CanView(ctx, "dave", list.ID)
	require.NoError(t, err)
	assert.False(t, ok, "outsider sees nothing")
}

func TestCanViewRecomputedAfterMembershipChange(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	list := f.addList(t, "alice", "Groceries")
	family := f.addFamily(t, "alice", "Smiths", "bob")
	f.shareWithFamily(t, list.ID, family.ID)

	ctx := context.Background()

	ok, err := f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.store.Families().RemoveMember(ctx, family.ID, "bob"))

	ok, err = f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.False(t, ok, "access is derived, not a stored grant")
}

func TestCanViewRecomputedAfterRevoke(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	list := f.addList(t, "alice", "Groceries")
	share := f.shareWithUser(t, list.ID, "bob")

	ctx := context.Background()

	ok, err := f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.store.Shares().Delete(ctx, share.ID))

	ok, err = f.resolver.CanView(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewMissingList(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")

	// A missing list and a denied list are indistinguishable to the caller.
	ok, err := f.resolver.CanView(context.Background(), "alice", uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListsVisibleTo(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	f.addUser(t, "carol")

	owned := f.addList(t, "bob", "Bob's own")
	direct := f.addList(t, "alice", "Shared directly")
	viaFamily := f.addList(t, "carol", "Shared via family")
	hidden := f.addList(t, "alice", "Not shared")

	f.shareWithUser(t, direct.ID, "bob")
	family := f.addFamily(t, "carol", "Smiths", "bob")
	f.shareWithFamily(t, viaFamily.ID, family.ID)

	lists, err := f.resolver.ListsVisibleTo(context.Background(), "bob")
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(lists))
	for _, l := range lists {
		ids[l.ID] = true
	}
	assert.True(t, ids[owned.ID])
	assert.True(t, ids[direct.ID])
	assert.True(t, ids[viaFamily.ID])
	assert.False(t, ids[hidden.ID])
	assert.Len(t, lists, 3)
}

func TestListsVisibleToDeduplicates(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	list := f.addList(t, "alice", "Groceries")

	// Direct share plus two family shares reaching the same user.
	f.shareWithUser(t, list.ID, "bob")
	fam1 := f.addFamily(t, "alice", "One", "bob")
	fam2 := f.addFamily(t, "alice", "Two", "bob")
	f.shareWithFamily(t, list.ID, fam1.ID)
	f.shareWithFamily(t, list.ID, fam2.ID)

	lists, err := f.resolver.ListsVisibleTo(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestIsOwner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	list := f.addList(t, "alice", "Groceries")
	f.shareWithUser(t, list.ID, "bob")

	ctx := context.Background()

	ok, err := f.resolver.IsOwner(ctx, "alice", list.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A share grants viewing, never ownership.
	ok, err = f.resolver.IsOwner(ctx, "bob", list.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
