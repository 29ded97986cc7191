// Package jwt provides a stateless credential resolver: it verifies an
// HS256-signed bearer JWT and resolves the subject claim to a stored user.
//
// Unlike the opaque-token flow, no token entity exists in the store; the
// credential proves itself cryptographically and only the principal lookup
// touches storage. Token issuance is out of scope.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse-dev/gatehouse/pkg/auth"
	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

// Config holds the JWT verifier configuration.
type Config struct {
	// Secret is the HMAC key used to verify HS256 signatures. Required.
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Audience is the expected aud claim. If empty, audience is not validated.
	Audience string

	// Leeway is the clock-skew allowance for time-based claims. Default: 30s.
	Leeway time.Duration
}

// applyDefaults fills in zero-value fields.
func (c *Config) applyDefaults() {
	if c.Leeway == 0 {
		c.Leeway = 30 * time.Second
	}
}

// Authenticator verifies bearer JWTs and resolves their subject to a user
// through the injected store. Safe for concurrent use.
type Authenticator[U any, ID comparable] struct {
	config  Config
	users   entity.Finder[ID, U]
	parseID func(string) (ID, error)
}

// New creates a JWT authenticator. parseID converts the string subject claim
// into the store's ID type; for string-keyed stores use ParseStringID.
func New[U any, ID comparable](cfg Config, users entity.Finder[ID, U], parseID func(string) (ID, error)) *Authenticator[U, ID] {
	cfg.applyDefaults()
	return &Authenticator[U, ID]{
		config:  cfg,
		users:   users,
		parseID: parseID,
	}
}

// ParseStringID is the identity conversion for string-keyed stores.
func ParseStringID(s string) (string, error) { return s, nil }

// Authenticate verifies tokenStr and resolves its subject to a stored user.
//
// ok is false for any definitive rejection: bad signature, expired token,
// wrong issuer or audience, unparseable subject, or a subject matching no
// stored user. err is reserved for infrastructure failures from the store.
func (a *Authenticator[U, ID]) Authenticate(ctx context.Context, tokenStr string) (U, bool, error) {
	var zero U

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithLeeway(a.config.Leeway),
	}
	if a.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(a.config.Issuer))
	}
	if a.config.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(a.config.Audience))
	}

	token, err := jwtlib.Parse(tokenStr, func(t *jwtlib.Token) (any, error) {
		return a.config.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		slog.Debug("jwt rejected", "error", err)
		return zero, false, nil
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return zero, false, nil
	}

	id, err := a.parseID(sub)
	if err != nil {
		return zero, false, nil
	}

	user, err := a.users.Find(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		// Valid signature but the subject is gone; same degrade-to-
		// unauthenticated policy as an orphaned opaque token.
		slog.Warn("jwt subject has no stored user", "subject", sub)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("resolving jwt subject: %w", err)
	}

	return user, true, nil
}

// Middleware populates the request's principal slot from a JWT bearer
// credential. Missing or rejected credentials leave the slot empty for the
// downstream gate; a store infrastructure failure is answered with 503.
func (a *Authenticator[U, ID]) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			user, ok, err := a.Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				slog.Error("jwt authentication failed", "path", r.URL.Path, "error", err)
				http.Error(w, `{"error":{"type":"server_error","message":"authentication unavailable"}}`, http.StatusServiceUnavailable)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), user)))
		})
	}
}
