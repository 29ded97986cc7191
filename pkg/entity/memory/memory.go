// Package memory provides an in-memory entity store for testing and
// lightweight deployments. Entities are held in maps guarded by a RWMutex
// and lost when the process exits.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

// Store is an in-memory entity store. The accessors supplied at construction
// tell it how to read an entity's primary key and, for owned entities, the
// owner foreign key and the opaque credential value. Safe for concurrent use.
type Store[ID comparable, E any] struct {
	mu      sync.RWMutex
	byID    map[ID]E
	idOf    func(E) ID
	ownerOf func(E) ID     // nil when the entity type carries no owner
	valueOf func(E) string // nil when the entity type carries no opaque value
}

// New creates a store for entities keyed only by their primary key.
func New[ID comparable, E any](idOf func(E) ID) *Store[ID, E] {
	return &Store[ID, E]{
		byID: make(map[ID]E),
		idOf: idOf,
	}
}

// NewOwned creates a store for entities that reference an owner and carry an
// opaque lookup value, enabling FindAllByOwner and FindByValue.
func NewOwned[ID comparable, E any](idOf, ownerOf func(E) ID, valueOf func(E) string) *Store[ID, E] {
	return &Store[ID, E]{
		byID:    make(map[ID]E),
		idOf:    idOf,
		ownerOf: ownerOf,
		valueOf: valueOf,
	}
}

// Put stores or replaces e under its primary key.
func (s *Store[ID, E]) Put(e E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[s.idOf(e)] = e
}

// Delete removes the entity with the given ID. Deleting an absent entity is
// not an error.
func (s *Store[ID, E]) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Find retrieves an entity by primary key. Returns entity.ErrNotFound when
// no entity has the given ID.
func (s *Store[ID, E]) Find(_ context.Context, id ID) (E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		var zero E
		return zero, entity.ErrNotFound
	}
	return e, nil
}

// FindAllByOwner returns all entities whose owner foreign key equals
// ownerID. An empty result is not an error.
func (s *Store[ID, E]) FindAllByOwner(_ context.Context, ownerID ID) ([]E, error) {
	if s.ownerOf == nil {
		return nil, errors.New("store does not index owners")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []E
	for _, e := range s.byID {
		if s.ownerOf(e) == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindByValue retrieves an entity by its opaque credential value. Returns
// entity.ErrNotFound when no entity carries the value.
func (s *Store[ID, E]) FindByValue(_ context.Context, value string) (E, error) {
	var zero E
	if s.valueOf == nil {
		return zero, errors.New("store does not index values")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.byID {
		if s.valueOf(e) == value {
			return e, nil
		}
	}
	return zero, entity.ErrNotFound
}
