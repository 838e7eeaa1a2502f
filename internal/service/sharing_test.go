package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharelist/sharelist/internal/service"
)

func strPtr(s string) *string { return &s }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestCreateShareWithUser(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	share, err := e.svc.CreateShare(context.Background(), "alice", list.ID, service.ShareTarget{
		UserID: strPtr("bob"),
	})
	require.NoError(t, err)
	require.NotNil(t, share.TargetUserID)
	assert.Equal(t, "bob", *share.TargetUserID)
	assert.Nil(t, share.TargetFamilyID)
	require.NotNil(t, share.User, "target relation resolved")
	assert.Equal(t, "bob", share.User.ID)
	require.NotNil(t, share.List)
	assert.Equal(t, list.ID, share.List.ID)
}

func TestCreateShareValidation(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")
	family, err := e.svc.CreateFamily(context.Background(), "alice", "Smiths")
	require.NoError(t, err)

	tests := []struct {
		name    string
		acting  string
		listID  uuid.UUID
		target  service.ShareTarget
		wantErr error
	}{
		{
			name:    "no target",
			acting:  "alice",
			listID:  list.ID,
			target:  service.ShareTarget{},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "both targets",
			acting:  "alice",
			listID:  list.ID,
			target:  service.ShareTarget{UserID: strPtr("bob"), FamilyID: uuidPtr(family.ID)},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "non-owner cannot share",
			acting:  "bob",
			listID:  list.ID,
			target:  service.ShareTarget{UserID: strPtr("bob")},
			wantErr: service.ErrUnauthorized,
		},
		{
			name:    "owner as target",
			acting:  "alice",
			listID:  list.ID,
			target:  service.ShareTarget{UserID: strPtr("alice")},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "missing target user",
			acting:  "alice",
			listID:  list.ID,
			target:  service.ShareTarget{UserID: strPtr("nobody")},
			wantErr: service.ErrNotFound,
		},
		{
			name:    "missing target family",
			acting:  "alice",
			listID:  list.ID,
			target:  service.ShareTarget{FamilyID: uuidPtr(uuid.New())},
			wantErr: service.ErrNotFound,
		},
		{
			name:    "missing list",
			acting:  "alice",
			listID:  uuid.New(),
			target:  service.ShareTarget{UserID: strPtr("bob")},
			wantErr: service.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateShare(context.Background(), tt.acting, tt.listID, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateShareDuplicate(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	_, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	require.NoError(t, err)

	_, err = e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCreateShareDuplicateFamily(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	family, err := e.svc.CreateFamily(ctx, "bob", "Smiths")
	require.NoError(t, err)

	_, err = e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{FamilyID: uuidPtr(family.ID)})
	require.NoError(t, err)

	_, err = e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{FamilyID: uuidPtr(family.ID)})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRevokeShare(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	share, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	require.NoError(t, err)

	// Bob can see the list while the share stands.
	_, err = e.svc.GetList(ctx, "bob", list.ID)
	require.NoError(t, err)

	// Only the list owner may revoke.
	err = e.svc.RevokeShare(ctx, "bob", share.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	require.NoError(t, e.svc.RevokeShare(ctx, "alice", share.ID))

	_, err = e.svc.GetList(ctx, "bob", list.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = e.svc.RevokeShare(ctx, "alice", share.ID)
	assert.ErrorIs(t, err, service.ErrNotFound, "revoking twice")
}

func TestGetShareVisibility(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	e.addUser(t, "carol")
	e.addUser(t, "dave")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	family, err := e.svc.CreateFamily(ctx, "carol", "Smiths")
	require.NoError(t, err)
	_, err = e.svc.AddFamilyMember(ctx, "carol", family.ID, "bob")
	require.NoError(t, err)

	share, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{FamilyID: uuidPtr(family.ID)})
	require.NoError(t, err)

	for _, userID := range []string{"alice", "carol", "bob"} {
		got, err := e.svc.GetShare(ctx, userID, share.ID)
		require.NoError(t, err, "user %s", userID)
		assert.Equal(t, share.ID, got.ID)
	}

	_, err = e.svc.GetShare(ctx, "dave", share.ID)
	assert.ErrorIs(t, err, service.ErrNotFound, "outsiders get not-found, not forbidden")
}

func TestSharesForListOwnerOnly(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	_, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	require.NoError(t, err)

	shares, err := e.svc.SharesForList(ctx, "alice", list.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 1)

	_, err = e.svc.SharesForList(ctx, "bob", list.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestShareGrantsViewNotOwnership(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	_, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	require.NoError(t, err)

	// Viewers mutate items but never the list itself.
	_, err = e.svc.AddItem(ctx, "bob", list.ID, service.ItemInput{Name: "Milk"})
	require.NoError(t, err)

	_, err = e.svc.RenameList(ctx, "bob", list.ID, "Hijacked")
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = e.svc.DeleteList(ctx, "bob", list.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
