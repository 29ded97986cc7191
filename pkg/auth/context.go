package auth

import "context"

// principalKey is a private context key type. Each principal type U gets its
// own key, so one request can carry at most one principal per type.
type principalKey[U any] struct{}

// WithPrincipal records u as the request's authenticated principal.
// Set at most once per request, by the credential-resolution step.
func WithPrincipal[U any](ctx context.Context, u U) context.Context {
	return context.WithValue(ctx, principalKey[U]{}, u)
}

// PrincipalFrom retrieves the authenticated principal of type U.
// ok is false when the slot is empty or holds a different principal type.
func PrincipalFrom[U any](ctx context.Context) (U, bool) {
	u, ok := ctx.Value(principalKey[U]{}).(U)
	return u, ok
}
