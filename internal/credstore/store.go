// Package credstore defines the credential persistence abstraction for
// ebay-bridge. Handlers depend on the Store interface, never on concrete
// implementations, so the service runs with an in-memory store when no
// database is configured.
package credstore

import (
	"context"
	"errors"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// ErrNotFound is returned when no credential exists under the given key.
var ErrNotFound = errors.New("credential not found")

// Store defines all credential persistence operations.
type Store interface {
	// Put stores a credential under key, replacing any existing record.
	Put(ctx context.Context, key string, cred *domain.Credential) error

	// Get retrieves a credential by key. Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) (*domain.Credential, error)

	// Delete removes a credential. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// PruneExpired removes credentials whose expiry has passed and returns
	// the number removed. Credentials without a recorded expiry are kept.
	PruneExpired(ctx context.Context) (int, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
