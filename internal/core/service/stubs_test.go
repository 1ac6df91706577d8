package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// plainHasher is a fast, deterministic stand-in for bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "hashed:" + secret, nil }

func (plainHasher) Verify(secret, hashed string) bool {
	return hashed != "" && hashed == "hashed:"+secret
}

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	seq       int
	countErr  error
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrDuplicateEntity
		}
	}
	r.seq++
	clone := *u
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, value string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == value || u.Email == value {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.byID)), nil
}

// seedUser inserts a user directly and returns its ID.
func (r *stubUserRepo) seedUser(username string, admin bool) string {
	u, _ := r.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed:password",
		IsAdmin:      admin,
	})
	return u.ID
}

type stubNoteRepo struct {
	byIdentifier map[string]*domain.Note
	// alwaysTaken makes every identifier probe report a collision.
	alwaysTaken bool
	probes      int
	findErr     error
	lastPatch   *domain.NotePatch
	lastFilter  ports.ListNotesFilter
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{byIdentifier: make(map[string]*domain.Note)}
}

func (r *stubNoteRepo) Create(_ context.Context, n *domain.Note) (*domain.Note, error) {
	if _, exists := r.byIdentifier[n.Identifier]; exists {
		return nil, domain.ErrDuplicateEntity
	}
	clone := *n
	clone.ID = "note-" + n.Identifier
	r.byIdentifier[n.Identifier] = &clone
	out := clone
	return &out, nil
}

func (r *stubNoteRepo) FindBySlugOrIdentifier(_ context.Context, value string) (*domain.Note, error) {
	r.probes++
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.alwaysTaken {
		return &domain.Note{Identifier: value, Slug: value}, nil
	}
	for _, n := range r.byIdentifier {
		if n.Identifier == value || n.Slug == value {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubNoteRepo) ListByUser(_ context.Context, f ports.ListNotesFilter) ([]*domain.Note, error) {
	r.lastFilter = f
	var out []*domain.Note
	for _, n := range r.byIdentifier {
		if n.UserID == f.UserID {
			clone := *n
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubNoteRepo) UpdateByIdentifierAndUser(_ context.Context, identifier, userID string, patch domain.NotePatch) (*domain.Note, error) {
	r.lastPatch = &patch
	n, ok := r.byIdentifier[identifier]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	updated := patch.Apply(*n)
	r.byIdentifier[identifier] = &updated
	out := updated
	return &out, nil
}

func (r *stubNoteRepo) DeleteBySlugOrIdentifierAndUser(_ context.Context, value, userID string) (bool, error) {
	for id, n := range r.byIdentifier {
		if (n.Identifier == value || n.Slug == value) && n.UserID == userID {
			delete(r.byIdentifier, id)
			return true, nil
		}
	}
	return false, nil
}

type stubInviteRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Invite
	seq    int
	markFn func(code string) (bool, error) // overrides MarkUsed when set
}

func newStubInviteRepo() *stubInviteRepo {
	return &stubInviteRepo{byID: make(map[string]*domain.Invite)}
}

func (r *stubInviteRepo) Create(_ context.Context, inv *domain.Invite) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *inv
	clone.ID = fmt.Sprintf("invite-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubInviteRepo) FindActiveByCode(_ context.Context, code string, now time.Time) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if inv.Code == code && inv.Active(now) {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubInviteRepo) MarkUsed(_ context.Context, code, usedBy string, now time.Time) (bool, error) {
	if r.markFn != nil {
		return r.markFn(code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if inv.Code == code && inv.Active(now) {
			inv.IsUsed = true
			inv.UsedBy = usedBy
			usedAt := now
			inv.UsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

func (r *stubInviteRepo) ListByCreator(_ context.Context, userID string) ([]*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Invite
	for _, inv := range r.byID {
		if inv.CreatedBy == userID {
			clone := *inv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubInviteRepo) DeleteByIDAndCreator(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok || inv.CreatedBy != userID {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubInviteRepo) byCode(code string) *domain.Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if inv.Code == code {
			clone := *inv
			return &clone
		}
	}
	return nil
}

// seedInvite stores an active invite with code created by createdBy.
func (r *stubInviteRepo) seedInvite(code, createdBy string, expiresAt time.Time) *domain.Invite {
	inv, _ := r.Create(context.Background(), &domain.Invite{
		Code:      strings.ToUpper(code),
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: &expiresAt,
	})
	return inv
}
