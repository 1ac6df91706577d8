package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/pkg/codegen"
)

// DefaultInviteTTL is how long a freshly issued invite stays valid.
const DefaultInviteTTL = 24 * time.Hour

// InviteService implements admin-only invite management.
type InviteService struct {
	repo    ports.InviteRepository
	users   ports.UserRepository
	ttl     time.Duration
	newCode func() string
	log     zerolog.Logger
	now     func() time.Time
}

func NewInviteService(repo ports.InviteRepository, users ports.UserRepository, ttl time.Duration, log zerolog.Logger) *InviteService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InviteService{
		repo:    repo,
		users:   users,
		ttl:     ttl,
		newCode: codegen.InviteCode,
		log:     log,
		now:     time.Now,
	}
}

// Create issues a new invite on behalf of an admin. expiresInDays is
// accepted for API compatibility but the expiry is always the service TTL.
func (s *InviteService) Create(ctx context.Context, adminID string, expiresInDays *int) (*domain.Invite, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if expiresInDays != nil {
		s.log.Debug().Int("expires_in_days", *expiresInDays).Dur("ttl", s.ttl).Msg("invite expiry override ignored")
	}
	return s.issue(ctx, adminID)
}

func (s *InviteService) List(ctx context.Context, adminID string) ([]*domain.Invite, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	invites, err := s.repo.ListByCreator(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// Delete removes an invite created by adminID. It reports false when no
// such invite exists or it belongs to another admin.
func (s *InviteService) Delete(ctx context.Context, id, adminID string) (bool, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return false, err
	}
	deleted, err := s.repo.DeleteByIDAndCreator(ctx, id, adminID)
	if err != nil {
		return false, fmt.Errorf("delete invite: %w", err)
	}
	return deleted, nil
}

// FindActive returns the unused, unexpired invite holding code, or nil.
func (s *InviteService) FindActive(ctx context.Context, code string) (*domain.Invite, error) {
	invite, err := s.repo.FindActiveByCode(ctx, code, s.now())
	if err != nil {
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return invite, nil
}

// Consume marks code used by userID. It reports false when the invite was
// no longer active.
func (s *InviteService) Consume(ctx context.Context, code, userID string) (bool, error) {
	used, err := s.repo.MarkUsed(ctx, code, userID, s.now())
	if err != nil {
		return false, fmt.Errorf("mark invite used: %w", err)
	}
	return used, nil
}

// IssueSystem issues an invite owned by no user, for bootstrapping.
func (s *InviteService) IssueSystem(ctx context.Context) (*domain.Invite, error) {
	return s.issue(ctx, domain.SystemUserID)
}

// issue generates a code that no active invite holds and stores the invite.
func (s *InviteService) issue(ctx context.Context, createdBy string) (*domain.Invite, error) {
	now := s.now().UTC()
	code, err := codegen.Unique(ctx, s.newCode, func(ctx context.Context, code string) (bool, error) {
		existing, err := s.repo.FindActiveByCode(ctx, code, now)
		return existing != nil, err
	}, codegen.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	invite, err := s.repo.Create(ctx, &domain.Invite{
		Code:      code,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	s.log.Info().Str("invite_id", invite.ID).Str("created_by", createdBy).Time("expires_at", expiresAt).Msg("invite created")
	return invite, nil
}

func (s *InviteService) requireAdmin(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
