package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharelist/sharelist/internal/service"
)

func TestAddItemBroadcastsAfterWrite(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	list := e.createList(t, "alice", "Groceries")

	item, err := e.svc.AddItem(context.Background(), "alice", list.ID, service.ItemInput{
		Name:     "Milk",
		Quantity: "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Milk", item.Name)
	assert.Equal(t, "2", item.Quantity)
	assert.Equal(t, list.ID, item.ListID)

	require.Len(t, e.broadcaster.added, 1)
	// The broadcast carries the persisted row, id included.
	assert.Equal(t, item.ID, e.broadcaster.added[0].ID)

	// And the write really happened.
	got, err := e.store.Items().GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestAddItemRequiresVisibility(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "mallory")
	list := e.createList(t, "alice", "Groceries")

	_, err := e.svc.AddItem(context.Background(), "mallory", list.ID, service.ItemInput{Name: "Milk"})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, e.broadcaster.added, "failed mutations broadcast nothing")
}

func TestAddItemValidation(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	list := e.createList(t, "alice", "Groceries")

	_, err := e.svc.AddItem(context.Background(), "alice", list.ID, service.ItemInput{Name: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = e.svc.AddItem(context.Background(), "", list.ID, service.ItemInput{Name: "Milk"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestSharedViewerCanMutateItems(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "bob")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	_, err := e.svc.CreateShare(ctx, "alice", list.ID, service.ShareTarget{UserID: strPtr("bob")})
	require.NoError(t, err)

	item, err := e.svc.AddItem(ctx, "bob", list.ID, service.ItemInput{Name: "Eggs"})
	require.NoError(t, err)

	updated, err := e.svc.UpdateItem(ctx, "bob", item.ID, service.ItemInput{
		Name:      "Eggs",
		Quantity:  "12",
		IsChecked: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "12", updated.Quantity)

	toggled, err := e.svc.ToggleItem(ctx, "bob", item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsChecked)

	require.NoError(t, e.svc.DeleteItem(ctx, "bob", item.ID))

	assert.Len(t, e.broadcaster.added, 1)
	assert.Len(t, e.broadcaster.updated, 2, "update and toggle both publish ItemUpdated")
	require.Len(t, e.broadcaster.deleted, 1)
	assert.Equal(t, item.ID, e.broadcaster.deleted[0])
}

func TestUpdateItemHiddenFromOutsiders(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "mallory")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	item, err := e.svc.AddItem(ctx, "alice", list.ID, service.ItemInput{Name: "Milk"})
	require.NoError(t, err)

	_, err = e.svc.UpdateItem(ctx, "mallory", item.ID, service.ItemInput{Name: "Poisoned"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = e.svc.DeleteItem(ctx, "mallory", item.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.ToggleItem(ctx, "mallory", item.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteItemMissing(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")

	err := e.svc.DeleteItem(context.Background(), "alice", uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, e.broadcaster.deleted)
}

func TestGetListMasksExistence(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	e.addUser(t, "mallory")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()

	_, errHidden := e.svc.GetList(ctx, "mallory", list.ID)
	_, errMissing := e.svc.GetList(ctx, "mallory", uuid.New())

	// An existing-but-unshared list and a missing one answer identically.
	assert.ErrorIs(t, errHidden, service.ErrNotFound)
	assert.ErrorIs(t, errMissing, service.ErrNotFound)
}

func TestPreviousItemNamesRecorded(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice")
	list := e.createList(t, "alice", "Groceries")

	ctx := context.Background()
	_, err := e.svc.AddItem(ctx, "alice", list.ID, service.ItemInput{Name: "Milk"})
	require.NoError(t, err)
	_, err = e.svc.AddItem(ctx, "alice", list.ID, service.ItemInput{Name: "Mint"})
	require.NoError(t, err)

	names, err := e.svc.PreviousItemNames(ctx, "alice", "mi", 10)
	require.NoError(t, err)
	require.Len(t, names, 2)
}
