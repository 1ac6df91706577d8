// Package memory implements the repositories in process, for local
// development and tests. Every repository copies values in and out so callers
// never share pointers with the stored state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// Store bundles the in-memory repositories.
type Store struct {
	Users   *UserRepository
	Notes   *NoteRepository
	Invites *InviteRepository
}

func NewStore() *Store {
	return &Store{
		Users:   NewUserRepository(),
		Notes:   NewNoteRepository(),
		Invites: NewInviteRepository(),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, fmt.Errorf("%w: username or email already registered", domain.ErrDuplicateEntity)
		}
	}
	stored := *u
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	return &stored, nil
}

func (r *UserRepository) FindByUsernameOrEmail(_ context.Context, value string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username == value || u.Email == value {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

type NoteRepository struct {
	mu           sync.RWMutex
	byIdentifier map[string]domain.Note
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{byIdentifier: make(map[string]domain.Note)}
}

func (r *NoteRepository) Create(_ context.Context, n *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byIdentifier[n.Identifier]; exists {
		return nil, fmt.Errorf("%w: identifier %s", domain.ErrDuplicateEntity, n.Identifier)
	}
	stored := *n
	stored.ID = uuid.NewString()
	r.byIdentifier[stored.Identifier] = stored
	return &stored, nil
}

func (r *NoteRepository) FindBySlugOrIdentifier(_ context.Context, value string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.lookup(value)
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *NoteRepository) ListByUser(_ context.Context, f ports.ListNotesFilter) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]*domain.Note, 0)
	for _, n := range r.byIdentifier {
		if n.UserID != f.UserID {
			continue
		}
		if f.Visibility == domain.VisibilityPublic && n.IsSecret {
			continue
		}
		if f.Visibility == domain.VisibilitySecret && !n.IsSecret {
			continue
		}
		if search != "" && !containsFold(search, n.Title, n.Description, n.Content) {
			continue
		}
		n := n
		out = append(out, &n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return noteLess(f.SortBy, out[i], out[j])
		}
		return noteLess(f.SortBy, out[j], out[i])
	})
	return out, nil
}

func (r *NoteRepository) UpdateByIdentifierAndUser(_ context.Context, identifier, userID string, patch domain.NotePatch) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byIdentifier[identifier]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	updated := patch.Apply(n)
	r.byIdentifier[identifier] = updated
	return &updated, nil
}

func (r *NoteRepository) DeleteBySlugOrIdentifierAndUser(_ context.Context, value, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.lookup(value)
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.byIdentifier, n.Identifier)
	return true, nil
}

// lookup must be called with the lock held.
func (r *NoteRepository) lookup(value string) (domain.Note, bool) {
	if n, ok := r.byIdentifier[value]; ok {
		return n, true
	}
	for _, n := range r.byIdentifier {
		if n.Slug == value {
			return n, true
		}
	}
	return domain.Note{}, false
}

func noteLess(by domain.NoteSort, a, b *domain.Note) bool {
	switch by {
	case domain.SortTitle:
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
	case domain.SortUpdated:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	return a.Identifier < b.Identifier
}

func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Invites
// ---------------------------------------------------------------------------

type InviteRepository struct {
	mu   sync.RWMutex
	byID map[string]domain.Invite
}

func NewInviteRepository() *InviteRepository {
	return &InviteRepository{byID: make(map[string]domain.Invite)}
}

func (r *InviteRepository) Create(_ context.Context, inv *domain.Invite) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *inv
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	return &stored, nil
}

func (r *InviteRepository) FindActiveByCode(_ context.Context, code string, now time.Time) (*domain.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.activeByCode(code, now)
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

// MarkUsed checks and consumes the invite under one write lock.
func (r *InviteRepository) MarkUsed(_ context.Context, code, usedBy string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.activeByCode(code, now)
	if !ok {
		return false, nil
	}
	usedAt := now.UTC()
	inv.IsUsed = true
	inv.UsedBy = usedBy
	inv.UsedAt = &usedAt
	r.byID[inv.ID] = inv
	return true, nil
}

func (r *InviteRepository) ListByCreator(_ context.Context, userID string) ([]*domain.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Invite, 0)
	for _, inv := range r.byID {
		if inv.CreatedBy == userID {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InviteRepository) DeleteByIDAndCreator(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.byID[id]
	if !ok || inv.CreatedBy != userID {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *InviteRepository) activeByCode(code string, now time.Time) (domain.Invite, bool) {
	for _, inv := range r.byID {
		if inv.Code == code && inv.Active(now) {
			return inv, true
		}
	}
	return domain.Invite{}, false
}
