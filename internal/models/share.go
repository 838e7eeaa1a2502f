package models

import (
	"time"

	"github.com/google/uuid"
)

// ListShare grants view access to a list, either to a single user or to every
// member of a family. Exactly one of TargetUserID / TargetFamilyID is set.
type ListShare struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ListID         uuid.UUID  `json:"listId" db:"list_id"`
	TargetUserID   *string    `json:"userId" db:"target_user_id"`
	TargetFamilyID *uuid.UUID `json:"familyId" db:"target_family_id"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`

	List   *List   `json:"list,omitempty"`
	User   *User   `json:"user,omitempty"`
	Family *Family `json:"family,omitempty"`
}
