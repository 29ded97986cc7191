package auth

import (
	"log/slog"
	"net/http"

	"github.com/gatehouse-dev/gatehouse/pkg/observability"
)

// DefaultLoginPath is where unauthenticated requests are sent unless a gate
// is configured with a different target.
const DefaultLoginPath = "/login"

// RedirectUnauthenticated returns middleware that forwards requests carrying
// an authenticated principal of type U and redirects everything else to path
// with 303 See Other, without invoking the next stage. An empty path selects
// DefaultLoginPath.
//
// The decision is immediate: the slot was populated (or not) upstream, and
// the gate never re-runs authentication. A slot holding a different
// principal type reads as empty. Exactly one of forward or redirect happens
// per request.
func RedirectUnauthenticated[U any](path string) func(http.Handler) http.Handler {
	if path == "" {
		path = DefaultLoginPath
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFrom[U](r.Context()); ok {
				observability.GateDecisionsTotal.WithLabelValues("forwarded").Inc()
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("redirecting unauthenticated request",
				"path", r.URL.Path,
				"target", path,
			)
			observability.GateDecisionsTotal.WithLabelValues("redirected").Inc()
			http.Redirect(w, r, path, http.StatusSeeOther)
		})
	}
}

// Login gates on a principal of type U, redirecting to the conventional
// login path. Use this to keep users away from protected content.
func Login[U any]() func(http.Handler) http.Handler {
	return RedirectUnauthenticated[U](DefaultLoginPath)
}
