package jwt

import (
	"context"
	"sync"
	"time"
)

// RevocationStore remembers revoked access tokens until they would expire anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationStore is the single-instance fallback when Redis is not configured.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for t, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, t)
		}
	}
	m.revoked[token] = now.Add(ttl)
	return nil
}

func (m *MemoryRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.revoked[token]
	return ok && !m.now().After(exp), nil
}
