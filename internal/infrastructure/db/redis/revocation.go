package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records logged-out session tokens in Redis.
// Key format: [<prefix>:]session:revoked:<jti>, expiring with the token.
type RevocationStore struct {
	client *redis.Client
	prefix string
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis
// client. An empty prefix leaves keys unprefixed.
func NewRevocationStore(client *redis.Client, prefix string) *RevocationStore {
	return &RevocationStore{client: client, prefix: normalizePrefix(prefix)}
}

// Revoke marks tokenID as revoked for ttl. Tokens that already expired need
// no entry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// Ping reports whether Redis is reachable.
func (s *RevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RevocationStore) Close() error {
	return s.client.Close()
}

func (s *RevocationStore) key(tokenID string) string {
	return s.prefix + "session:revoked:" + tokenID
}
