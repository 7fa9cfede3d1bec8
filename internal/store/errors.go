package store

import "errors"

var (
	// ErrNotFound is returned when a mutation targets an unknown identifier.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState is returned when an operation is not legal in the
	// entity's current state, e.g. renting a game that is not available or
	// completing an already-completed rental.
	ErrInvalidState = errors.New("invalid state for operation")
)
