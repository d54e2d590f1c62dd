package nonce

import (
	"context"
	"strings"
	"sync"
	"time"

	"chamba-onchain-backend/internal/domain"
)

type entry struct {
	nonce     string
	expiresAt time.Time
}

// MemoryStore keeps sign-in nonces in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[strings.ToLower(address)] = entry{nonce: nonce, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, address string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(address)
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, key)
	if s.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.nonce, true, nil
}

var _ domain.NonceStore = (*MemoryStore)(nil)
