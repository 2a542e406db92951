//go:build integration

package credstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sellerdesk/ebay-bridge/internal/credstore"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

func setupPostgres(t *testing.T) *credstore.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ebridge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := credstore.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_PutGetDelete(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	expires := time.Now().Add(2 * time.Hour).Truncate(time.Microsecond).UTC()
	cred := &domain.Credential{
		TokenType:    domain.TokenOAuth2,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Scopes:       []string{"https://api.ebay.com/oauth/api_scope"},
		ExpiresAt:    &expires,
	}

	require.NoError(t, s.Put(ctx, "user-1", cred))

	got, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenOAuth2, got.TokenType)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.Equal(t, cred.Scopes, got.Scopes)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(expires))

	// Upsert replaces the record.
	cred.AccessToken = "access-2"
	require.NoError(t, s.Put(ctx, "user-1", cred))

	got, err = s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)

	require.NoError(t, s.Delete(ctx, "user-1"))
	_, err = s.Get(ctx, "user-1")
	assert.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestPostgresStore_LegacyCredential(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	hard := time.Now().Add(500 * 24 * time.Hour).Truncate(time.Microsecond).UTC()
	cred := &domain.Credential{
		TokenType:          domain.TokenAuthNAuth,
		AccessToken:        "legacy-token",
		Scopes:             domain.TradingScopes,
		HardExpirationTime: &hard,
		OwnerUsername:      "seller42",
	}

	require.NoError(t, s.Put(ctx, "seller42", cred))

	got, err := s.Get(ctx, "seller42")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenAuthNAuth, got.TokenType)
	assert.Equal(t, "seller42", got.OwnerUsername)
	assert.Equal(t, domain.TradingScopes, got.Scopes)
	require.NotNil(t, got.HardExpirationTime)
	assert.True(t, got.HardExpirationTime.Equal(hard))
	assert.Nil(t, got.ExpiresAt)
}

func TestPostgresStore_PruneExpired(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()

	put := func(key string, expiresAt *time.Time) {
		require.NoError(t, s.Put(ctx, key, &domain.Credential{
			TokenType:   domain.TokenOAuth2,
			AccessToken: "tok",
			ExpiresAt:   expiresAt,
		}))
	}
	put("expired", &past)
	put("live", &future)
	put("no-expiry", nil)

	pruned, err := s.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, err = s.Get(ctx, "expired")
	assert.ErrorIs(t, err, credstore.ErrNotFound)
	_, err = s.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "no-expiry")
	assert.NoError(t, err)
}
