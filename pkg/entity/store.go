package entity

import "context"

// Finder performs a primary-key lookup for one entity type.
//
// Find returns ErrNotFound when no entity has the given ID, and an error
// wrapping ErrUnavailable when the store cannot be reached. The lookup may
// block; implementations must honor ctx cancellation.
type Finder[ID comparable, E any] interface {
	Find(ctx context.Context, id ID) (E, error)
}

// Lister enumerates all entities whose owner foreign key equals ownerID.
//
// An empty result is not an error: FindAllByOwner returns a nil or empty
// slice, never ErrNotFound. Infrastructure failures wrap ErrUnavailable.
type Lister[ID comparable, E any] interface {
	FindAllByOwner(ctx context.Context, ownerID ID) ([]E, error)
}
