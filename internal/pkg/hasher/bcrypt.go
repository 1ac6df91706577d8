// Package hasher implements one-way hashing of passwords and note secrets.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxSecretBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxSecretBytes = 72

// Bcrypt hashes secrets with a salted, tunable bcrypt hash.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt hasher. Costs outside bcrypt's accepted range
// fall back to DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt hash of secret. Secrets longer than
// MaxSecretBytes are rejected with domain.ErrValidation.
func (b *Bcrypt) Hash(secret string) (string, error) {
	if len(secret) > MaxSecretBytes {
		return "", fmt.Errorf("%w: password or secret must be at most %d bytes", domain.ErrValidation, MaxSecretBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// Verify compares secret against hashed. Any error, including a malformed
// hash, is reported as a mismatch.
func (b *Bcrypt) Verify(secret, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
