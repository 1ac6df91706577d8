package ports

import (
	"context"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

// ListNotesFilter carries the query parameters for listing a user's notes.
// UserID is always set by the service layer from the authenticated caller.
type ListNotesFilter struct {
	UserID     string
	Search     string                // optional: case-insensitive substring of title, description or content
	Visibility domain.NoteVisibility // empty = all
	SortBy     domain.NoteSort       // empty = created
	Ascending  bool
}

// NoteRepository defines persistence operations for notes.
// Every owner-scoped query filters by user ID in the store itself.
type NoteRepository interface {
	// Create inserts a note. An identifier collision returns domain.ErrDuplicateEntity.
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	FindBySlugOrIdentifier(ctx context.Context, value string) (*domain.Note, error)
	ListByUser(ctx context.Context, filter ListNotesFilter) ([]*domain.Note, error)
	// UpdateByIdentifierAndUser applies patch and returns the stored result,
	// or (nil, nil) when no note matches both identifier and userID.
	UpdateByIdentifierAndUser(ctx context.Context, identifier, userID string, patch domain.NotePatch) (*domain.Note, error)
	// DeleteBySlugOrIdentifierAndUser reports whether a matching note was removed.
	DeleteBySlugOrIdentifierAndUser(ctx context.Context, value, userID string) (bool, error)
}
