package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/api/metrics"
	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/pkg/session"
)

// SessionIssuer signs session tokens for authenticated users.
type SessionIssuer interface {
	Encode(id session.Identity) (token string, expiresAt time.Time, err error)
}

type AuthHandler struct {
	authService  ports.AuthService
	sessions     SessionIssuer
	revocations  ports.RevocationStore
	secureCookie bool
	log          zerolog.Logger
	now          func() time.Time
}

func NewAuthHandler(authService ports.AuthService, sessions SessionIssuer, revocations ports.RevocationStore, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		revocations:  revocations,
		secureCookie: secureCookie,
		log:          log,
		now:          time.Now,
	}
}

// Register creates a new user account from an invite code and signs the user in.
//
// @Summary      Register with an invite code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", attemptResult(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()

	return h.startSession(c, http.StatusCreated, user)
}

// Login authenticates by username or email and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return err
	}
	if user == nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return domain.ErrInvalidCredentials
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	return h.startSession(c, http.StatusOK, user)
}

// Logout revokes the current token and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Security     SessionCookie
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	if h.revocations != nil {
		if err := h.revocations.Revoke(c.Request().Context(), id.TokenID, id.ExpiresAt.Sub(h.now())); err != nil {
			metrics.AuthAttemptsTotal.WithLabelValues("logout", "error").Inc()
			return err
		}
	}
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "success").Inc()

	c.SetCookie(h.cookie("", time.Unix(0, 0), -1))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) startSession(c echo.Context, status int, user *domain.User) error {
	token, expiresAt, err := h.sessions.Encode(session.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(token, expiresAt, int(expiresAt.Sub(h.now()).Seconds())))
	h.log.Info().Str("user_id", user.ID).Msg("session started")

	return c.JSON(status, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

func (h *AuthHandler) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func attemptResult(err error) string {
	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidInvite) ||
		errors.Is(err, domain.ErrDuplicateEntity) {
		return "invalid"
	}
	return "error"
}
