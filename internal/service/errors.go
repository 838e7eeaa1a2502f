package service

import "errors"

// Error taxonomy returned by the service layer. The API edge maps these to
// HTTP statuses with errors.Is. Lack of a view grant on a list is reported as
// ErrNotFound, never ErrForbidden, so the existence of other users' lists is
// not revealed.
var (
	// ErrUnauthorized means no identity, or the identity lacks the right to
	// perform the mutation (e.g. managing shares on somebody else's list).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the entity does not exist or the caller has no grant
	// to see it.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is known but may not perform the action
	// on an entity they can otherwise see.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRequest means the request is malformed, e.g. a share target
	// naming both a user and a family.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrConflict means an equivalent record already exists.
	ErrConflict = errors.New("conflict")
)
