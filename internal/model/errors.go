package model

import "errors"

// Sentinel errors shared by every layer. Handlers map these onto HTTP
// statuses; stores and services return them wrapped with %w.
var (
	// ErrUnauthenticated: missing, malformed, or unverifiable credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden: authenticated but wrong identity or role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: duplicate creation, e.g. a user with an existing email.
	ErrConflict = errors.New("already exists")

	// ErrInvalidTransition: the entity is not in the status the requested
	// mutation needs (approving a denied offering, re-paying a paid selection).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState: a payment confirmation referenced entities that fail
	// the referential checks (missing/foreign selection, unapproved offering).
	ErrInvalidState = errors.New("invalid state for payment")

	// ErrCapacityExceeded: the seat counter would go negative.
	ErrCapacityExceeded = errors.New("no seats available")

	// ErrProviderUnavailable: the external payment provider timed out or errored.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
