package models

import (
	"time"

	"github.com/google/uuid"
)

// Family is a named group of users. The owner manages membership and is
// implicitly a viewer of everything shared with the family, without holding a
// FamilyMember row of their own.
type Family struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerUserID string    `json:"ownerUserId" db:"owner_user_id"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Members     []*User   `json:"members,omitempty"`
}

// FamilyMember is the join row between families and users.
// Unique per (family_id, user_id).
type FamilyMember struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FamilyID uuid.UUID `json:"familyId" db:"family_id"`
	UserID   string    `json:"userId" db:"user_id"`
	Role     string    `json:"role" db:"role"` // "admin" or "member"
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
	User     *User     `json:"user,omitempty"`
}
