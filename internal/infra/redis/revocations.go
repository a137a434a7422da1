package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records signed-out token IDs: SET auth:revoked:{jti} 1 EX ttl
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}
