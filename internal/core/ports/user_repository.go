package ports

import (
	"context"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	// Create inserts the user and returns it with its store-assigned ID.
	// A username or email collision returns domain.ErrDuplicateEntity.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsernameOrEmail matches value against either unique field.
	FindByUsernameOrEmail(ctx context.Context, value string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
