package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "questkeeper:revoked:"

// RevocationStore is a Redis-backed denylist of logged-out token ids.
// Entries expire with the token, so the set stays bounded. With a nil
// client every token stays valid until expiry, which is the degraded
// behavior we accept when Redis is down.
type RevocationStore struct {
	redis *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{redis: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s == nil || s.redis == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if s == nil || s.redis == nil || jti == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return n > 0
}
