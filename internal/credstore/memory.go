package credstore

import (
	"context"
	"sync"
	"time"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// MemoryStore is a mutex-guarded map implementation of Store. It is the
// default when no database is configured; credentials do not survive a
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	creds   map[string]domain.Credential
	nowFunc func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryNowFunc overrides the time function for testing.
func WithMemoryNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		creds:   make(map[string]domain.Credential),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a copy of the credential under key.
func (s *MemoryStore) Put(_ context.Context, key string, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[key] = *cred
	return nil
}

// Get returns a copy of the stored credential, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &cred, nil
}

// Delete removes the credential under key, if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, key)
	return nil
}

// PruneExpired drops credentials whose expiry has passed.
func (s *MemoryStore) PruneExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	pruned := 0
	for key, cred := range s.creds {
		if cred.Expired(now) {
			delete(s.creds, key)
			pruned++
		}
	}
	return pruned, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
