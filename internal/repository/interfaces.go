package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
)

// UserRepository defines the interface for user lookups. Accounts are created
// by the identity subsystem; this side only reads them.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ListRepository defines the interface for list data operations
type ListRepository interface {
	Create(ctx context.Context, list *models.List) (*models.List, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.List, error)
	GetOwnedBy(ctx context.Context, userID string) ([]*models.List, error)
	Update(ctx context.Context, list *models.List) (*models.List, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByList(ctx context.Context, listID uuid.UUID) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShareRepository defines the interface for list share operations
type ShareRepository interface {
	Create(ctx context.Context, share *models.ListShare) (*models.ListShare, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ListShare, error)
	GetForList(ctx context.Context, listID uuid.UUID) ([]*models.ListShare, error)
	// GetListIDsForUser returns ids of lists shared directly with the user.
	GetListIDsForUser(ctx context.Context, userID string) ([]uuid.UUID, error)
	// GetListIDsForFamilies returns ids of lists shared with any of the families.
	GetListIDsForFamilies(ctx context.Context, familyIDs []uuid.UUID) ([]uuid.UUID, error)
	ExistsForUser(ctx context.Context, listID uuid.UUID, userID string) (bool, error)
	ExistsForFamily(ctx context.Context, listID, familyID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FamilyRepository defines the interface for family and membership operations
type FamilyRepository interface {
	Create(ctx context.Context, family *models.Family) (*models.Family, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error)
	Update(ctx context.Context, family *models.Family) (*models.Family, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, familyID uuid.UUID, userID, role string) (*models.FamilyMember, error)
	RemoveMember(ctx context.Context, familyID uuid.UUID, userID string) error
	GetMemberships(ctx context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error)
	GetMembershipsForUser(ctx context.Context, userID string) ([]*models.FamilyMember, error)
	GetOwnedBy(ctx context.Context, userID string) ([]*models.Family, error)
	HasMember(ctx context.Context, familyID uuid.UUID, userID string) (bool, error)
}

// CategoryRepository defines the interface for category lookup tables
type CategoryRepository interface {
	UpsertCategory(ctx context.Context, name string) (*models.Category, error)
	UpsertSubCategory(ctx context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error)
	GetAll(ctx context.Context) ([]*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindSubByName(ctx context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error)
}

// ItemNameRepository defines the interface for per-user item name history
type ItemNameRepository interface {
	Record(ctx context.Context, userID, name string) error
	GetForUser(ctx context.Context, userID, prefix string, limit int) ([]*models.PreviousItemName, error)
}
