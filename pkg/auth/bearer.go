package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

// TokenLookup finds a stored token entity by the opaque value a client
// presented. Returns entity.ErrNotFound when no token carries the value.
type TokenLookup[T any] interface {
	FindByValue(ctx context.Context, value string) (T, error)
}

// Bearer returns middleware that resolves an Authorization bearer credential
// to a principal and populates the request's principal slot.
//
// It never rejects a request over a missing or unknown credential; the slot
// is simply left empty and the downstream gate decides. A store
// infrastructure failure is answered with 503 immediately, so a transient
// outage can neither masquerade as a denial nor as an allow.
func Bearer[U, T any, ID comparable](tokens TokenLookup[T], authn *TokenAuthenticator[U, T, ID]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value, ok := bearerValue(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			token, err := tokens.FindByValue(r.Context(), value)
			if errors.Is(err, entity.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("token lookup failed",
					"path", r.URL.Path,
					"error", err,
				)
				unavailable(w)
				return
			}

			user, ok, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				slog.Error("authentication failed",
					"path", r.URL.Path,
					"error", err,
				)
				unavailable(w)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("authenticated request", "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// bearerValue extracts the credential from the Authorization header.
func bearerValue(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	value := strings.TrimPrefix(header, "Bearer ")
	return value, value != ""
}

func unavailable(w http.ResponseWriter) {
	http.Error(w, `{"error":{"type":"server_error","message":"authentication unavailable"}}`, http.StatusServiceUnavailable)
}
