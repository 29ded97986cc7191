package entity

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a lookup matches no entity.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable is returned when the store itself cannot be reached
	// (connection failure, timeout). Adapters wrap driver errors with this
	// sentinel so callers can tell an outage apart from a definitive miss.
	ErrUnavailable = errors.New("store unavailable")
)
