package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/pkg/codegen"
)

type NoteService struct {
	repo   ports.NoteRepository
	hasher ports.Hasher
	newID  func() string
	log    zerolog.Logger
	now    func() time.Time
}

func NewNoteService(repo ports.NoteRepository, hasher ports.Hasher, log zerolog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		hasher: hasher,
		newID:  codegen.NoteIdentifier,
		log:    log,
		now:    time.Now,
	}
}

// Create stores a new note owned by ownerID under a freshly generated identifier.
func (s *NoteService) Create(ctx context.Context, ownerID string, in ports.NoteInput) (*domain.Note, error) {
	if err := validateNoteText(in); err != nil {
		return nil, err
	}
	if in.IsSecret && isBlank(in.Secret) {
		return nil, fmt.Errorf("%w: secret is required for secret notes", domain.ErrValidation)
	}

	var secretHash string
	if in.IsSecret {
		h, err := s.hasher.Hash(in.Secret)
		if err != nil {
			return nil, err
		}
		secretHash = h
	}

	identifier, err := s.uniqueIdentifier(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note, err := s.repo.Create(ctx, &domain.Note{
		Identifier:  identifier,
		Slug:        identifier,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		IsSecret:    in.IsSecret,
		SecretHash:  secretHash,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", ownerID).Msg("failed to create note")
		return nil, err
	}

	s.log.Info().Str("slug", note.Slug).Str("user_id", ownerID).Bool("secret", note.IsSecret).Msg("note created")
	return note, nil
}

// Get returns the note with slug. Callers decide what of it to expose.
func (s *NoteService) Get(ctx context.Context, slug string) (*domain.Note, error) {
	note, err := s.repo.FindBySlugOrIdentifier(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	return note, nil
}

// View returns the public rendering of a note. Secret content is only
// included for the owner.
func (s *NoteService) View(ctx context.Context, slug, viewerID string) (*ports.NoteView, error) {
	note, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := &ports.NoteView{Note: note, IsOwner: note.OwnedBy(viewerID)}
	if !note.IsSecret || view.IsOwner {
		view.Content = note.Content
	}
	return view, nil
}

// Reveal returns the content of a note, checking secret for secret notes.
func (s *NoteService) Reveal(ctx context.Context, slug, secret string) (string, error) {
	note, err := s.Get(ctx, slug)
	if err != nil {
		return "", err
	}
	if !note.IsSecret {
		return note.Content, nil
	}
	if !s.hasher.Verify(secret, note.SecretHash) {
		return "", domain.ErrInvalidSecret
	}
	return note.Content, nil
}

// List returns the owner's notes matching the dashboard query.
func (s *NoteService) List(ctx context.Context, ownerID string, in ports.ListNotesInput) ([]*domain.Note, error) {
	filter, err := toListFilter(ownerID, in)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.ListByUser(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Update replaces the note's fields. Secrecy transitions:
//
//	public -> secret  requires a non-blank secret
//	secret -> secret  blank keeps the stored hash, non-blank rehashes
//	any    -> public  clears the hash
func (s *NoteService) Update(ctx context.Context, slug, ownerID string, in ports.NoteInput) (*domain.Note, error) {
	if err := validateNoteText(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindBySlugOrIdentifier(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if !existing.OwnedBy(ownerID) {
		return nil, domain.ErrForbidden
	}

	patch := domain.NotePatch{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		IsSecret:    in.IsSecret,
		UpdatedAt:   s.now().UTC(),
	}

	switch {
	case !in.IsSecret:
		patch.Secret = domain.SecretChange{Op: domain.SecretClear}
	case !isBlank(in.Secret):
		h, err := s.hasher.Hash(in.Secret)
		if err != nil {
			return nil, err
		}
		patch.Secret = domain.SecretChange{Op: domain.SecretSet, Hash: h}
	case existing.IsSecret && existing.SecretHash != "":
		patch.Secret = domain.SecretChange{Op: domain.SecretKeep}
	default:
		return nil, fmt.Errorf("%w: secret is required when making a note secret", domain.ErrValidation)
	}

	updated, err := s.repo.UpdateByIdentifierAndUser(ctx, existing.Identifier, ownerID, patch)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if updated == nil {
		// deleted between the read and the write
		return nil, domain.ErrNotFound
	}

	s.log.Info().Str("slug", updated.Slug).Str("secret_op", patch.Secret.Op.String()).Msg("note updated")
	return updated, nil
}

// Delete reports whether a note with slug owned by ownerID was removed.
// False covers both a missing note and someone else's note.
func (s *NoteService) Delete(ctx context.Context, slug, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, nil
	}
	deleted, err := s.repo.DeleteBySlugOrIdentifierAndUser(ctx, slug, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	if deleted {
		s.log.Info().Str("slug", slug).Str("user_id", ownerID).Msg("note deleted")
	}
	return deleted, nil
}

// VerifySecret reports whether secret unlocks the note. Missing notes,
// public notes and wrong secrets all report false.
func (s *NoteService) VerifySecret(ctx context.Context, slug, secret string) (bool, error) {
	note, err := s.repo.FindBySlugOrIdentifier(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("verify secret: %w", err)
	}
	if note == nil || !note.IsSecret || note.SecretHash == "" {
		return false, nil
	}
	return s.hasher.Verify(secret, note.SecretHash), nil
}

func (s *NoteService) uniqueIdentifier(ctx context.Context) (string, error) {
	return codegen.Unique(ctx, s.newID, func(ctx context.Context, id string) (bool, error) {
		existing, err := s.repo.FindBySlugOrIdentifier(ctx, id)
		return existing != nil, err
	}, codegen.MaxAttempts)
}

func validateNoteText(in ports.NoteInput) error {
	if isBlank(in.Title) || isBlank(in.Description) || isBlank(in.Content) {
		return fmt.Errorf("%w: title, description and content are required", domain.ErrValidation)
	}
	return nil
}

func toListFilter(ownerID string, in ports.ListNotesInput) (ports.ListNotesFilter, error) {
	f := ports.ListNotesFilter{
		UserID: ownerID,
		Search: strings.TrimSpace(in.Search),
	}

	switch v := domain.NoteVisibility(strings.ToLower(in.Filter)); v {
	case "", domain.VisibilityAll:
		f.Visibility = domain.VisibilityAll
	case domain.VisibilityPublic, domain.VisibilitySecret:
		f.Visibility = v
	default:
		return f, fmt.Errorf("%w: filter must be one of all, public, secret", domain.ErrValidation)
	}

	switch sb := domain.NoteSort(strings.ToLower(in.Sort)); sb {
	case "":
		f.SortBy = domain.SortCreated
	case domain.SortCreated, domain.SortUpdated, domain.SortTitle:
		f.SortBy = sb
	default:
		return f, fmt.Errorf("%w: sort must be one of created, updated, title", domain.ErrValidation)
	}

	switch strings.ToLower(in.Order) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, fmt.Errorf("%w: order must be asc or desc", domain.ErrValidation)
	}
	return f, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
