package utils

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist records revoked session tokens until they expire.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = until
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	expiry, exists := b.tokens[token]
	b.mu.RUnlock()
	if !exists {
		return false, nil
	}
	if time.Now().Before(expiry) {
		return true, nil
	}

	// Hapus token kadaluarsa dari blacklist
	b.mu.Lock()
	delete(b.tokens, token)
	b.mu.Unlock()
	return false, nil
}

// Cleanup drops expired entries; run periodically from the server loop.
func (b *MemoryBlacklist) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for token, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, token)
		}
	}
}
