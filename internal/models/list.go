package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a shopping list owned by exactly one user. Deleting a list cascades
// to its items and shares at the storage layer.
type List struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerUserID string    `json:"ownerUserId" db:"owner_user_id"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Items       []*Item   `json:"items,omitempty"`
}
