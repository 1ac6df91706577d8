package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharenotes/notes-api/internal/api/metrics"
	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// NoteHandler serves the owner's note API and the public note pages.
type NoteHandler struct {
	notes ports.NoteService
}

func NewNoteHandler(notes ports.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List handles GET /v1/notes.
//
// @Summary      List my notes
// @Tags         notes
// @Produce      json
// @Security     SessionCookie
// @Param        search  query     string  false  "Case-insensitive text search"
// @Param        filter  query     string  false  "all, public or secret"
// @Param        sort    query     string  false  "created, updated or title"
// @Param        order   query     string  false  "asc or desc"
// @Success      200     {object}  noteListResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var q listNotesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	notes, err := h.notes.List(c.Request().Context(), id.ID, ports.ListNotesInput{
		Search: q.Search,
		Filter: q.Filter,
		Sort:   q.Sort,
		Order:  q.Order,
	})
	if err != nil {
		return err
	}

	resp := noteListResponse{Notes: make([]noteResponse, 0, len(notes)), Count: len(notes)}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, toNoteResponse(n))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/notes.
//
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      noteRequest  true  "Note"
// @Success      201   {object}  noteResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req noteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.notes.Create(c.Request().Context(), id.ID, req.toInput())
	if err != nil {
		return err
	}
	metrics.NoteOperationsTotal.WithLabelValues("create", metrics.Visibility(note.IsSecret)).Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/v1/notes/"+note.Slug)
	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

// Get handles GET /v1/notes/:slug. Only the owner may load the full note.
//
// @Summary      Get one of my notes
// @Tags         notes
// @Produce      json
// @Security     SessionCookie
// @Param        slug  path      string  true  "Note slug"
// @Success      200   {object}  noteResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/notes/{slug} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	note, err := h.notes.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if !note.OwnedBy(id.ID) {
		return domain.ErrForbidden
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// Update handles PUT /v1/notes/:slug.
//
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        slug  path      string       true  "Note slug"
// @Param        body  body      noteRequest  true  "Note"
// @Success      200   {object}  noteResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/notes/{slug} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req noteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.notes.Update(c.Request().Context(), c.Param("slug"), id.ID, req.toInput())
	if err != nil {
		return err
	}
	metrics.NoteOperationsTotal.WithLabelValues("update", metrics.Visibility(note.IsSecret)).Inc()

	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// Delete handles DELETE /v1/notes/:slug.
//
// @Summary      Delete a note
// @Tags         notes
// @Security     SessionCookie
// @Param        slug  path  string  true  "Note slug"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/notes/{slug} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	deleted, err := h.notes.Delete(c.Request().Context(), c.Param("slug"), id.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	metrics.NoteOperationsTotal.WithLabelValues("delete", "unknown").Inc()

	return c.NoContent(http.StatusNoContent)
}

// View handles GET /n/:slug, the shareable page of a note.
//
// @Summary      View a shared note
// @Tags         public
// @Produce      json
// @Param        slug  path      string  true  "Note slug"
// @Success      200   {object}  publicNoteResponse
// @Failure      404   {object}  errorResponse
// @Router       /n/{slug} [get]
func (h *NoteHandler) View(c echo.Context) error {
	view, err := h.notes.View(c.Request().Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPublicNoteResponse(view))
}

// Reveal handles POST /n/:slug/reveal.
//
// @Summary      Unlock a secret note
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        slug  path      string         true  "Note slug"
// @Param        body  body      revealRequest  true  "Secret"
// @Success      200   {object}  revealResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /n/{slug}/reveal [post]
func (h *NoteHandler) Reveal(c echo.Context) error {
	var req revealRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slug := c.Param("slug")
	content, err := h.notes.Reveal(c.Request().Context(), slug, req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSecret) {
			metrics.SecretRevealsTotal.WithLabelValues("denied").Inc()
		}
		return err
	}
	metrics.SecretRevealsTotal.WithLabelValues("granted").Inc()

	return c.JSON(http.StatusOK, revealResponse{Slug: slug, Content: content})
}
