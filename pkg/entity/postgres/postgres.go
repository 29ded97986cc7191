// Package postgres provides PostgreSQL-backed stores for the account
// entities. It uses pgx/v5 for connection pooling and maps driver failures
// onto the pkg/entity sentinels so the authentication core can tell an
// outage apart from a definitive miss.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-dev/gatehouse/pkg/account"
	"github.com/gatehouse-dev/gatehouse/pkg/auth"
	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

// Store owns the connection pool shared by the per-entity stores.
type Store struct {
	pool   *pgxpool.Pool
	users  *UserStore
	tokens *TokenStore
}

// New creates a PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}
	s.users = &UserStore{pool: pool}
	s.tokens = &TokenStore{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Users returns the user store backed by this pool.
func (s *Store) Users() *UserStore { return s.users }

// Tokens returns the token store backed by this pool.
func (s *Store) Tokens() *TokenStore { return s.tokens }

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// UserStore reads and provisions users.
type UserStore struct {
	pool *pgxpool.Pool
}

// Ensure the stores satisfy the contracts the core consumes.
var (
	_ entity.Finder[string, account.User]  = (*UserStore)(nil)
	_ entity.Lister[string, account.Token] = (*TokenStore)(nil)
	_ auth.TokenLookup[account.Token]      = (*TokenStore)(nil)
)

// Find retrieves a user by ID. Returns entity.ErrNotFound when no user has
// the given ID; any other failure wraps entity.ErrUnavailable.
func (s *UserStore) Find(ctx context.Context, id string) (account.User, error) {
	var u account.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return account.User{}, entity.ErrNotFound
	}
	if err != nil {
		return account.User{}, infra("querying user", err)
	}
	return u, nil
}

// Create persists a user. Used for provisioning and tests; the
// authentication core itself never writes.
func (s *UserStore) Create(ctx context.Context, u account.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)`,
		u.ID, u.Name, u.CreatedAt,
	)
	if err != nil {
		return infra("inserting user", err)
	}
	return nil
}

// Delete removes a user by ID. Tokens referencing the user are left in
// place; resolving them afterwards exercises the orphaned-token path.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return infra("deleting user", err)
	}
	return nil
}

// TokenStore reads and provisions tokens.
type TokenStore struct {
	pool *pgxpool.Pool
}

// FindByValue retrieves a token by the opaque value a client presented.
func (s *TokenStore) FindByValue(ctx context.Context, value string) (account.Token, error) {
	var t account.Token
	err := s.pool.QueryRow(ctx,
		`SELECT id, value, user_id, created_at FROM tokens WHERE value = $1`,
		value,
	).Scan(&t.ID, &t.Value, &t.UserID, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return account.Token{}, entity.ErrNotFound
	}
	if err != nil {
		return account.Token{}, infra("querying token", err)
	}
	return t, nil
}

// FindAllByOwner returns all tokens owned by the given user ID.
// An empty result is not an error.
func (s *TokenStore) FindAllByOwner(ctx context.Context, ownerID string) ([]account.Token, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, value, user_id, created_at FROM tokens WHERE user_id = $1 ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, infra("querying tokens", err)
	}
	defer rows.Close()

	var out []account.Token
	for rows.Next() {
		var t account.Token
		if err := rows.Scan(&t.ID, &t.Value, &t.UserID, &t.CreatedAt); err != nil {
			return nil, infra("scanning token", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra("reading tokens", err)
	}
	return out, nil
}

// Create persists a token. Used for provisioning and tests.
func (s *TokenStore) Create(ctx context.Context, t account.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tokens (id, value, user_id, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Value, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return infra("inserting token", err)
	}
	return nil
}

// infra wraps a driver error so callers can detect an infrastructure
// failure via errors.Is(err, entity.ErrUnavailable).
func infra(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, entity.ErrUnavailable, err)
}
