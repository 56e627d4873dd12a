// Package store holds the revoked-token blacklist backends.
package store

import (
	"context"
	"sync"
	"time"
)

// Blacklist records revoked access tokens until they expire
type Blacklist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryBlacklist keeps revoked tokens in process memory. Entries are lost on restart.
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: map[string]time.Time{}, now: time.Now}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()
	if expiresAt.After(b.now()) {
		b.revoked[token] = expiresAt
	}
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.revoked[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(b.now()) {
		delete(b.revoked, token)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked tokens, expired ones included
func (b *MemoryBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.revoked)
}

// sweepLocked drops entries whose token can no longer verify anyway
func (b *MemoryBlacklist) sweepLocked() {
	now := b.now()
	for token, expiresAt := range b.revoked {
		if !expiresAt.After(now) {
			delete(b.revoked, token)
		}
	}
}
