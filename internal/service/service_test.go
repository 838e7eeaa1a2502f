package service_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sharelist/sharelist/internal/access"
	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository/memory"
	"github.com/sharelist/sharelist/internal/service"
)

// recordingBroadcaster captures published events for assertions.
type recordingBroadcaster struct {
	mu      sync.Mutex
	added   []*models.Item
	updated []*models.Item
	deleted []uuid.UUID
}

func (b *recordingBroadcaster) ItemAdded(_ uuid.UUID, item *models.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.added = append(b.added, item)
}

func (b *recordingBroadcaster) ItemUpdated(_ uuid.UUID, item *models.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, item)
}

func (b *recordingBroadcaster) ItemDeleted(_, itemID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, itemID)
}

type env struct {
	store       *memory.Store
	svc         *service.Service
	broadcaster *recordingBroadcaster
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	broadcaster := &recordingBroadcaster{}

	l := logrus.New()
	l.SetOutput(io.Discard)

	resolver := access.NewResolver(store.Lists(), store.Shares(), store.Families())
	svc := service.New(service.Deps{
		Logger:      l,
		Resolver:    resolver,
		Broadcaster: broadcaster,
		Users:       store.Users(),
		Lists:       store.Lists(),
		Items:       store.Items(),
		Shares:      store.Shares(),
		Families:    store.Families(),
		Categories:  store.Categories(),
		ItemNames:   store.ItemNames(),
	})
	return &env{store: store, svc: svc, broadcaster: broadcaster}
}

func (e *env) addUser(t *testing.T, id string) *models.User {
	t.Helper()
	return e.store.AddUser(&models.User{ID: id, Email: id + "@example.com"})
}

func (e *env) createList(t *testing.T, ownerID, name string) *models.List {
	t.Helper()
	list, err := e.svc.CreateList(context.Background(), ownerID, name)
	require.NoError(t, err)
	return list
}
