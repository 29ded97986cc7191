// Command server runs the gatehouse demo server: a small site whose
// protected pages sit behind the token-authentication gate.
//
// With the default in-memory storage a demo account and bearer token are
// seeded at startup and logged, so the gate can be exercised immediately:
//
//	curl -i localhost:8080/profile                          # 303 -> /login
//	curl -i -H "Authorization: Bearer <value>" localhost:8080/profile
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatehouse-dev/gatehouse/pkg/account"
	"github.com/gatehouse-dev/gatehouse/pkg/auth"
	authjwt "github.com/gatehouse-dev/gatehouse/pkg/auth/jwt"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/entity"
	"github.com/gatehouse-dev/gatehouse/pkg/entity/memory"
	"github.com/gatehouse-dev/gatehouse/pkg/entity/postgres"
	"github.com/gatehouse-dev/gatehouse/pkg/observability"
	"github.com/gatehouse-dev/gatehouse/pkg/relation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the entity stores.
	var (
		users  entity.Finder[string, account.User]
		tokens entity.Lister[string, account.Token]
		lookup auth.TokenLookup[account.Token]
	)

	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating postgres store: %w", err)
		}
		defer store.Close()
		users = store.Users()
		tokens = store.Tokens()
		lookup = store.Tokens()
		slog.Info("storage enabled", "type", "postgres")

	default:
		userStore := memory.New(func(u account.User) string { return u.ID })
		tokenStore := memory.NewOwned(
			func(t account.Token) string { return t.ID },
			func(t account.Token) string { return t.UserID },
			func(t account.Token) string { return t.Value },
		)

		// Seed a demo account so the gate can be tried out of the box.
		demo := account.NewUser("demo")
		tok := account.NewToken(demo, uuid.NewString())
		userStore.Put(demo)
		tokenStore.Put(tok)

		users = userStore
		tokens = tokenStore
		lookup = tokenStore
		slog.Info("storage enabled", "type", "memory")
		slog.Info("seeded demo account", "user", demo.Name, "bearer", tok.Value)
	}

	// Authentication core: resolver, authenticator, gate.
	resolver := relation.NewResolver(users, tokens, account.Schema())
	authn := auth.NewTokenAuthenticator(resolver)
	gate := auth.RedirectUnauthenticated[account.User](cfg.Auth.RedirectPath)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "gatehouse demo. Protected content lives at /profile.")
	})

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Sign in: present your token as an Authorization bearer header.")
	})

	mux.Handle("GET /profile", gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.PrincipalFrom[account.User](r.Context())
		fmt.Fprintf(w, "Hello, %s.\n", user.Name)

		count := 0
		for _, err := range resolver.TokensOf(r.Context(), user) {
			if err != nil {
				slog.Error("listing tokens", "user", user.ID, "error", err)
				return
			}
			count++
		}
		fmt.Fprintf(w, "You have %d active token(s).\n", count)
	})))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	// Credential extraction runs for every request; the gate only guards
	// the protected routes.
	handler := http.Handler(mux)
	if cfg.Auth.JWT.Secret != "" {
		verifier := authjwt.New(authjwt.Config{
			Secret:   []byte(cfg.Auth.JWT.Secret),
			Issuer:   cfg.Auth.JWT.Issuer,
			Audience: cfg.Auth.JWT.Audience,
		}, users, authjwt.ParseStringID)
		handler = verifier.Middleware()(handler)
		slog.Info("jwt credentials enabled", "issuer", cfg.Auth.JWT.Issuer)
	}
	handler = auth.Bearer(lookup, authn)(handler)
	handler = observability.MetricsMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "redirect_path", cfg.Auth.RedirectPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
