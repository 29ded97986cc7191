// Package relation encapsulates the token-ownership relation: one user owns
// many tokens, and every token references exactly one user.
//
// The resolver is generic over the (user, token) entity pair and the ID type
// that links them. It performs no I/O of its own; lookups go through the
// injected entity store capabilities, so any store adapter satisfying the
// contracts in pkg/entity can back authentication.
package relation

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

// Schema describes how to read the identifiers that make up the ownership
// relation for one (user, token) entity pair.
type Schema[U, T any, ID comparable] struct {
	// UserID reads a user's primary key.
	UserID func(U) ID

	// OwnerID reads the owning user's ID off a token.
	OwnerID func(T) ID
}

// Resolver navigates the ownership relation in both directions:
// token to owner (used for authentication) and user to tokens
// (exposed as a convenience query).
type Resolver[U, T any, ID comparable] struct {
	users  entity.Finder[ID, U]
	tokens entity.Lister[ID, T]
	schema Schema[U, T, ID]
}

// NewResolver builds a resolver over the given stores and schema.
func NewResolver[U, T any, ID comparable](users entity.Finder[ID, U], tokens entity.Lister[ID, T], schema Schema[U, T, ID]) *Resolver[U, T, ID] {
	return &Resolver[U, T, ID]{users: users, tokens: tokens, schema: schema}
}

// OwnerID reads the owning user's ID off token.
func (r *Resolver[U, T, ID]) OwnerID(token T) ID {
	return r.schema.OwnerID(token)
}

// OwnerOf looks up the user that owns token.
//
// A token whose owner ID matches no stored user is a referential-integrity
// violation in the backing store; the resulting entity.ErrNotFound is
// surfaced, never swallowed. Infrastructure failures propagate unchanged.
func (r *Resolver[U, T, ID]) OwnerOf(ctx context.Context, token T) (U, error) {
	ownerID := r.schema.OwnerID(token)
	owner, err := r.users.Find(ctx, ownerID)
	if err != nil {
		var zero U
		if errors.Is(err, entity.ErrNotFound) {
			return zero, fmt.Errorf("owner %v of token: %w", ownerID, err)
		}
		return zero, fmt.Errorf("looking up token owner: %w", err)
	}
	return owner, nil
}

// TokensOf returns the tokens owned by user as a lazy sequence. Ranging over
// the sequence again restarts the underlying query. A user with no tokens
// yields an empty sequence, not an error; a store failure is yielded once as
// the sequence's only element.
func (r *Resolver[U, T, ID]) TokensOf(ctx context.Context, user U) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		tokens, err := r.tokens.FindAllByOwner(ctx, r.schema.UserID(user))
		if err != nil {
			var zero T
			yield(zero, fmt.Errorf("listing tokens: %w", err))
			return
		}
		for _, t := range tokens {
			if !yield(t, nil) {
				return
			}
		}
	}
}
