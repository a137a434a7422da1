package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore remembers signed-out token IDs until the token would have expired anyway.
type RevocationStore struct {
	now func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return NewRevocationStoreWithClock(time.Now)
}

// NewRevocationStoreWithClock allows deterministic expiry in tests.
func NewRevocationStoreWithClock(now func() time.Time) *RevocationStore {
	return &RevocationStore{now: now, revoked: make(map[string]time.Time)}
}

func (s *RevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[tokenID]
	return ok && expiresAt.After(s.now()), nil
}
