package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharenotes/notes-api/internal/api/metrics"
	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// InviteHandler exposes admin invite management.
type InviteHandler struct {
	invites ports.InviteService
	now     func() time.Time
}

func NewInviteHandler(invites ports.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites, now: time.Now}
}

// Create handles POST /v1/invites.
//
// @Summary      Issue an invite
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createInviteRequest  false  "Options"
// @Success      201   {object}  inviteResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/invites [post]
func (h *InviteHandler) Create(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req createInviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inv, err := h.invites.Create(c.Request().Context(), id.ID, req.ExpiresInDays)
	if err != nil {
		return err
	}
	metrics.InvitesIssuedTotal.Inc()

	return c.JSON(http.StatusCreated, toInviteResponse(inv, h.now()))
}

// List handles GET /v1/invites.
//
// @Summary      List invites I issued
// @Tags         invites
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  inviteListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/invites [get]
func (h *InviteHandler) List(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	invites, err := h.invites.List(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}

	now := h.now()
	resp := inviteListResponse{Invites: make([]inviteResponse, 0, len(invites)), Count: len(invites)}
	for _, inv := range invites {
		resp.Invites = append(resp.Invites, toInviteResponse(inv, now))
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /v1/invites/:id.
//
// @Summary      Delete an invite
// @Tags         invites
// @Security     SessionCookie
// @Param        id  path  string  true  "Invite ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/invites/{id} [delete]
func (h *InviteHandler) Delete(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	deleted, err := h.invites.Delete(c.Request().Context(), c.Param("id"), id.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return c.NoContent(http.StatusNoContent)
}
