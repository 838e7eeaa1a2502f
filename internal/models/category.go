package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a read-mostly lookup row seeded from CSV at startup.
type Category struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	SubCategories []*SubCategory `json:"subCategories,omitempty"`
}

// SubCategory belongs to exactly one parent category.
type SubCategory struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	ParentCategoryID uuid.UUID `json:"parentCategoryId" db:"parent_category_id"`
}

// PreviousItemName records a distinct item name a user has added before,
// used for autocomplete suggestions.
type PreviousItemName struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	LastUsedAt time.Time `json:"lastUsedAt" db:"last_used_at"`
}
