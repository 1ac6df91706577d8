package ports

import (
	"context"
	"time"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// InviteRepository defines persistence operations for invites.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) (*domain.Invite, error)
	// FindActiveByCode returns the unused invite with code that has no expiry
	// or expires after now.
	FindActiveByCode(ctx context.Context, code string, now time.Time) (*domain.Invite, error)
	// MarkUsed atomically flips an active invite to used. It reports false
	// when the invite was already used, expired or never existed.
	MarkUsed(ctx context.Context, code, usedBy string, now time.Time) (bool, error)
	ListByCreator(ctx context.Context, userID string) ([]*domain.Invite, error)
	DeleteByIDAndCreator(ctx context.Context, id, userID string) (bool, error)
}
