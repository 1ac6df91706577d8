package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin lets through sessions flagged as admin. Services still re-read
// the user, so a demoted admin holding an old token gets 403 there.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			if id == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !id.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}
