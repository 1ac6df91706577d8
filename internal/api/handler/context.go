package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharenotes/notes-api/internal/pkg/session"
)

// currentIdentity returns the identity injected by the Session middleware,
// or nil for anonymous requests.
func currentIdentity(c echo.Context) *session.Identity {
	id, _ := c.Get(session.ContextKey).(*session.Identity)
	return id
}

// requireIdentity is the handler-side guard for routes mounted behind
// RequireSession; it fails fast if the middleware was skipped.
func requireIdentity(c echo.Context) (*session.Identity, error) {
	id := currentIdentity(c)
	if id == nil || id.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

// viewerID is the caller's user ID, empty when anonymous.
func viewerID(c echo.Context) string {
	if id := currentIdentity(c); id != nil {
		return id.ID
	}
	return ""
}
