package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// AuthService implements invite-gated registration and login.
type AuthService struct {
	users   ports.UserRepository
	invites *InviteService
	hasher  ports.Hasher
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(users ports.UserRepository, invites *InviteService, hasher ports.Hasher, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		invites: invites,
		hasher:  hasher,
		log:     log,
		now:     time.Now,
	}
}

// Register validates the invite, creates the user and consumes the invite.
// The invite is checked before the user is written; if consuming it fails
// afterwards the user row stays and ErrInviteConsumed is returned.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	code := normalizeInviteCode(in.InviteCode)
	if in.Username == "" || in.Email == "" || in.Password == "" || code == "" {
		return nil, fmt.Errorf("%w: username, email, password and invite code are required", domain.ErrValidation)
	}

	invite, err := s.invites.FindActive(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if invite == nil {
		return nil, domain.ErrInvalidInvite
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: count users: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      count == 0,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	used, err := s.invites.Consume(ctx, code, user.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if !used {
		s.log.Warn().Str("user_id", user.ID).Str("invite", code).Msg("invite consumed concurrently, user created without invite")
		return nil, domain.ErrInviteConsumed
	}

	s.log.Info().Str("user_id", user.ID).Bool("admin", user.IsAdmin).Msg("user registered")
	return user, nil
}

// Authenticate looks the user up by username or email and checks the
// password. It never reports which of the two failed.
func (s *AuthService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.User, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return nil, nil
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// Bootstrap issues a system invite while no user exists so the first
// administrator can register. It returns nil when users already exist.
func (s *AuthService) Bootstrap(ctx context.Context) (*domain.Invite, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: count users: %w", err)
	}
	if count > 0 {
		return nil, nil
	}
	return s.invites.IssueSystem(ctx)
}

func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
