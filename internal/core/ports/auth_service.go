package ports

import (
	"context"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	InviteCode string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Authenticate returns (nil, nil) on any credential mismatch.
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.User, error)
	CurrentUser(ctx context.Context, id string) (*domain.User, error)
}
