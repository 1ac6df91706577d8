package ports

import (
	"context"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// InviteService defines admin-only invite management.
type InviteService interface {
	Create(ctx context.Context, adminID string, expiresInDays *int) (*domain.Invite, error)
	List(ctx context.Context, adminID string) ([]*domain.Invite, error)
	Delete(ctx context.Context, id, adminID string) (bool, error)
}
