package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sharelist/sharelist/internal/access"
	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository"
)

// Broadcaster publishes item mutation events to every connection currently
// viewing the item's list. Implementations must be fire-and-forget: a failure
// to deliver never propagates back to the mutating caller.
type Broadcaster interface {
	ItemAdded(listID uuid.UUID, item *models.Item)
	ItemUpdated(listID uuid.UUID, item *models.Item)
	ItemDeleted(listID, itemID uuid.UUID)
}

// Classifier predicts a category for an item name via the external
// classification service.
type Classifier interface {
	Classify(ctx context.Context, productName string) (*Classification, error)
}

// Classification is the classifier's answer. Empty fields mean no usable
// prediction.
type Classification struct {
	PrimaryCategory string
	SubCategory     string
}

// NopBroadcaster discards all events. Used when no hub is wired, e.g. in
// tests that don't observe broadcasts.
type NopBroadcaster struct{}

func (NopBroadcaster) ItemAdded(uuid.UUID, *models.Item)   {}
func (NopBroadcaster) ItemUpdated(uuid.UUID, *models.Item) {}
func (NopBroadcaster) ItemDeleted(uuid.UUID, uuid.UUID)    {}

// Service is the central business logic layer. It authorizes through the
// access resolver, persists through the repositories, and publishes item
// mutations through the broadcaster strictly after the write succeeds.
type Service struct {
	logger      *logrus.Logger
	resolver    *access.Resolver
	broadcaster Broadcaster
	classifier  Classifier

	users     repository.UserRepository
	lists     repository.ListRepository
	items     repository.ItemRepository
	shares    repository.ShareRepository
	families  repository.FamilyRepository
	cats      repository.CategoryRepository
	itemNames repository.ItemNameRepository
}

// Deps bundles the service dependencies.
type Deps struct {
	Logger      *logrus.Logger
	Resolver    *access.Resolver
	Broadcaster Broadcaster
	Classifier  Classifier // optional
	Users       repository.UserRepository
	Lists       repository.ListRepository
	Items       repository.ItemRepository
	Shares      repository.ShareRepository
	Families    repository.FamilyRepository
	Categories  repository.CategoryRepository
	ItemNames   repository.ItemNameRepository
}

// New creates a new Service with all required dependencies.
func New(d Deps) *Service {
	if d.Broadcaster == nil {
		d.Broadcaster = NopBroadcaster{}
	}
	return &Service{
		logger:      d.Logger,
		resolver:    d.Resolver,
		broadcaster: d.Broadcaster,
		classifier:  d.Classifier,
		users:       d.Users,
		lists:       d.Lists,
		items:       d.Items,
		shares:      d.Shares,
		families:    d.Families,
		cats:        d.Categories,
		itemNames:   d.ItemNames,
	}
}

// Resolver exposes the access resolver, e.g. for the hub's join check.
func (s *Service) Resolver() *access.Resolver {
	return s.resolver
}

// Categories lists the category lookup table with nested sub-categories.
func (s *Service) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.cats.GetAll(ctx)
}

// PreviousItemNames returns autocomplete suggestions for the user, most
// recently used first.
func (s *Service) PreviousItemNames(ctx context.Context, userID, prefix string, limit int) ([]*models.PreviousItemName, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.itemNames.GetForUser(ctx, userID, prefix, limit)
}
