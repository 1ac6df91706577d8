package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/pkg/session"
)

// TokenDecoder turns a session token into an identity, nil when invalid.
type TokenDecoder interface {
	Decode(token string) *session.Identity
}

// Session decodes the session cookie or an Authorization bearer token and
// stores the identity in the context. The cookie is tried first; a stale or
// revoked cookie falls through to the header. Requests without a valid,
// unrevoked token continue anonymously.
func Session(decoder TokenDecoder, revoked ports.RevocationStore, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, token := range tokensFrom(c.Request()) {
				id := decoder.Decode(token)
				if id == nil {
					continue
				}

				if revoked != nil {
					isRevoked, err := revoked.IsRevoked(c.Request().Context(), id.TokenID)
					if err != nil {
						log.Warn().Err(err).Str("user_id", id.ID).Msg("revocation check failed, treating session as anonymous")
						return next(c)
					}
					if isRevoked {
						continue
					}
				}

				c.Set(session.ContextKey, id)
				break
			}
			return next(c)
		}
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// Identity returns the identity stored by Session, or nil.
func Identity(c echo.Context) *session.Identity {
	id, _ := c.Get(session.ContextKey).(*session.Identity)
	return id
}

// tokensFrom returns the cookie token then the bearer token, skipping
// whichever is absent.
func tokensFrom(r *http.Request) []string {
	tokens := make([]string, 0, 2)
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
