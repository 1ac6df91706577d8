package ports

import (
	"context"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// NoteInput is the DTO passed from the transport layer to NoteService on
// create and update.
type NoteInput struct {
	Title       string
	Description string
	Content     string
	IsSecret    bool
	Secret      string
}

// ListNotesInput carries the dashboard query parameters.
type ListNotesInput struct {
	Search string
	Filter string // all | public | secret
	Sort   string // created | updated | title
	Order  string // asc | desc
}

// NoteView is the public rendering of a note. Content is empty for secret
// notes unless the viewer owns them.
type NoteView struct {
	Note    *domain.Note
	Content string
	IsOwner bool
}

// NoteService defines use-case operations for notes.
type NoteService interface {
	Create(ctx context.Context, ownerID string, input NoteInput) (*domain.Note, error)
	Get(ctx context.Context, slug string) (*domain.Note, error)
	View(ctx context.Context, slug, viewerID string) (*NoteView, error)
	Reveal(ctx context.Context, slug, secret string) (string, error)
	List(ctx context.Context, ownerID string, input ListNotesInput) ([]*domain.Note, error)
	Update(ctx context.Context, slug, ownerID string, input NoteInput) (*domain.Note, error)
	Delete(ctx context.Context, slug, ownerID string) (bool, error)
	VerifySecret(ctx context.Context, slug, secret string) (bool, error)
}
