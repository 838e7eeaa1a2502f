package models

import "time"

// User mirrors an account issued by the identity provider. The service never
// creates accounts itself; it only resolves them by id when validating share
// targets and family members.
type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
