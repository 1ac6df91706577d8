// Package codegen produces short random codes and enforces their uniqueness
// by probing the store and retrying on collision.
package codegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

const (
	// Lower is the alphabet for note identifiers.
	Lower = "abcdefghijklmnopqrstuvwxyz0123456789"
	// Upper is the alphabet for invite codes.
	Upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// CodeLength is the length of note identifiers and invite codes.
	CodeLength = 8
	// MaxAttempts bounds the generate-and-probe loop.
	MaxAttempts = 10
)

// GenerateCode draws length characters independently and uniformly from alphabet.
func GenerateCode(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}

// ExistsFunc reports whether code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Unique calls gen until exists reports a miss. After maxAttempts collisions
// it fails with domain.ErrGenerationExhausted. Probe errors abort immediately.
func Unique(ctx context.Context, gen func() string, exists ExistsFunc, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := gen()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("probe code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, maxAttempts)
}

// NoteIdentifier returns a lowercase 8-character note identifier.
func NoteIdentifier() string {
	return GenerateCode(Lower, CodeLength)
}

// InviteCode returns an uppercase 8-character invite code.
func InviteCode() string {
	return GenerateCode(Upper, CodeLength)
}
