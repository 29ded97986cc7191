package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gatehouse-dev/gatehouse/pkg/entity"
	"github.com/gatehouse-dev/gatehouse/pkg/observability"
	"github.com/gatehouse-dev/gatehouse/pkg/relation"
)

// TokenAuthenticator resolves presented token entities to the user that owns
// them. It holds no mutable state and is safe for concurrent use.
//
// The zero value of the ID type is reserved as the null owner reference: a
// token carrying a zero owner ID is malformed and never reaches the store.
type TokenAuthenticator[U, T any, ID comparable] struct {
	resolver *relation.Resolver[U, T, ID]
}

// NewTokenAuthenticator builds an authenticator over resolver.
func NewTokenAuthenticator[U, T any, ID comparable](resolver *relation.Resolver[U, T, ID]) *TokenAuthenticator[U, T, ID] {
	return &TokenAuthenticator[U, T, ID]{resolver: resolver}
}

// Authenticate maps token to its owning user.
//
// ok reports a definitive outcome: true with the owner on success, false for
// a malformed token or one whose owner no longer exists. err is reserved for
// infrastructure failures (entity.ErrUnavailable and friends), which are
// propagated unchanged so callers can tell "definitely not authenticated"
// apart from "could not determine".
func (a *TokenAuthenticator[U, T, ID]) Authenticate(ctx context.Context, token T) (U, bool, error) {
	var zero U
	var nullID ID

	ownerID := a.resolver.OwnerID(token)
	if ownerID == nullID {
		observability.AuthAttemptsTotal.WithLabelValues("no_match").Inc()
		return zero, false, nil
	}

	owner, err := a.resolver.OwnerOf(ctx, token)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		// The owner vanished out from under the token. Degrade to
		// unauthenticated rather than failing the request, but leave a
		// trace for operators: this is store inconsistency, not a client
		// mistake.
		slog.Warn("token references missing owner", "owner_id", fmt.Sprint(ownerID))
		observability.AuthAttemptsTotal.WithLabelValues("orphaned").Inc()
		return zero, false, nil
	case err != nil:
		observability.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return zero, false, err
	}

	observability.AuthAttemptsTotal.WithLabelValues("authenticated").Inc()
	return owner, true, nil
}
