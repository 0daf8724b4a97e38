package auth

import (
	"context"
	"sync"
	"time"
)

// Blacklist records revoked refresh token IDs until they would have
// expired on their own.
type Blacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// MemoryBlacklist keeps revocations in process memory. Suitable for a
// single instance or tests; production deployments use the Redis store.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

var _ Blacklist = (*MemoryBlacklist)(nil)

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expires, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expires) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}
