package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Put inserts or replaces a credential by key.
func (s *PostgresStore) Put(ctx context.Context, key string, cred *domain.Credential) error {
	args := pgx.NamedArgs{
		"key":                  key,
		"token_type":           string(cred.TokenType),
		"access_token":         cred.AccessToken,
		"scopes":               cred.Scopes,
		"refresh_token":        cred.RefreshToken,
		"expires_at":           cred.ExpiresAt,
		"hard_expiration_time": cred.HardExpirationTime,
		"owner_username":       cred.OwnerUsername,
	}

	if _, err := s.pool.Exec(ctx, queryUpsertCredential, args); err != nil {
		return fmt.Errorf("upserting credential: %w", err)
	}
	return nil
}

// Get retrieves a credential by key.
func (s *PostgresStore) Get(ctx context.Context, key string) (*domain.Credential, error) {
	cred := &domain.Credential{}
	var tokenType string

	err := s.pool.QueryRow(ctx, queryGetCredential, key).Scan(
		&tokenType, &cred.AccessToken, &cred.Scopes,
		&cred.RefreshToken, &cred.ExpiresAt, &cred.HardExpirationTime, &cred.OwnerUsername,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credential: %w", err)
	}

	cred.TokenType = domain.TokenType(tokenType)
	return cred, nil
}

// Delete removes a credential by key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteCredential, key); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// PruneExpired removes credentials whose expiry has passed.
func (s *PostgresStore) PruneExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, queryPruneExpiredCredentials)
	if err != nil {
		return 0, fmt.Errorf("pruning expired credentials: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
