package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

func TestHTTPErrorHandler_MapsErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "echo error", err: echo.NewHTTPError(http.StatusUnauthorized, "authentication required"), wantCode: http.StatusUnauthorized, wantMsg: "authentication required"},
		{name: "validation", err: fmt.Errorf("%w: title is required", domain.ErrValidation), wantCode: http.StatusBadRequest, wantMsg: "title is required"},
		{name: "invite consumed", err: domain.ErrInviteConsumed, wantCode: http.StatusConflict},
		{name: "invalid invite", err: domain.ErrInvalidInvite, wantCode: http.StatusBadRequest},
		{name: "forbidden", err: domain.ErrForbidden, wantCode: http.StatusForbidden},
		{name: "not found", err: domain.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "duplicate", err: fmt.Errorf("create user: %w", domain.ErrDuplicateEntity), wantCode: http.StatusConflict},
		{name: "credentials", err: domain.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "secret", err: domain.ErrInvalidSecret, wantCode: http.StatusUnauthorized},
		{name: "exhausted", err: domain.ErrGenerationExhausted, wantCode: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("mongo: connection reset"), wantCode: http.StatusInternalServerError, wantMsg: "internal server error"},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantMsg != "" && !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("expected body to contain %q, got %s", tt.wantMsg, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "connection reset") {
				t.Errorf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}
