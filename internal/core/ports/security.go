package ports

import (
	"context"
	"time"
)

// Hasher hashes and verifies passwords and note secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether secret matches hashed. Malformed hashes never match.
	Verify(secret, hashed string) bool
}

// RevocationStore remembers session token IDs that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
