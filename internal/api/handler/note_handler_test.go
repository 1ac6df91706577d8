package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/pkg/session"
)

// seedUsers registers an admin and a second user invited by the admin.
func seedUsers(t *testing.T, env *testEnv) (admin, bob *session.Identity) {
	t.Helper()
	admin = env.register(t, "alice", env.bootstrapCode(t))
	inv, err := env.invites.Create(context.Background(), admin.ID, nil)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	bob = env.register(t, "bobby", inv.Code)
	return admin, bob
}

func createNote(t *testing.T, env *testEnv, h *NoteHandler, owner *session.Identity, body string) noteResponse {
	t.Helper()
	c, rec := env.request(http.MethodPost, "/v1/notes", body, owner)
	if err := h.Create(c); err != nil {
		t.Fatalf("create note: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp noteResponse
	decode(t, rec, &resp)
	if got := rec.Header().Get("Location"); got != "/v1/notes/"+resp.Slug {
		t.Errorf("unexpected Location %q", got)
	}
	return resp
}

const secretNoteBody = `{"title":"Vault","description":"d","content":"the launch codes","is_secret":true,"secret":"hunter2"}`

func TestNoteHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := seedUsers(t, env)
	h := NewNoteHandler(env.notes)

	note := createNote(t, env, h, alice, `{"title":"Hello","description":"greeting","content":"world"}`)
	if len(note.Slug) != 8 || note.Slug != note.Identifier {
		t.Errorf("expected 8-char slug equal to identifier, got %+v", note)
	}
	if note.Links.Public != "/n/"+note.Slug {
		t.Errorf("unexpected public link %q", note.Links.Public)
	}

	c, rec := env.request(http.MethodGet, "/v1/notes/"+note.Slug, "", alice)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = env.request(http.MethodGet, "/v1/notes/"+note.Slug, "", bob)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestNoteHandler_Create_SecretWithoutSecret(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := seedUsers(t, env)
	h := NewNoteHandler(env.notes)

	c, _ := env.request(http.MethodPost, "/v1/notes", `{"title":"T","description":"d","content":"c","is_secret":true}`, alice)
	if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNoteHandler_ViewAndReveal(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := seedUsers(t, env)
	h := NewNoteHandler(env.notes)
	note := createNote(t, env, h, alice, secretNoteBody)

	t.Run("anonymous view is locked", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/n/"+note.Slug, "", nil)
		c.SetParamNames("slug")
		c.SetParamValues(note.Slug)
		if err := h.View(c); err != nil {
			t.Fatalf("view: %v", err)
		}
		var resp publicNoteResponse
		decode(t, rec, &resp)
		if !resp.Locked || resp.Content != "" || resp.IsOwner {
			t.Errorf("expected locked view without content, got %+v", resp)
		}
	})

	t.Run("owner view shows content", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/n/"+note.Slug, "", alice)
		c.SetParamNames("slug")
		c.SetParamValues(note.Slug)
		if err := h.View(c); err != nil {
			t.Fatalf("view: %v", err)
		}
		var resp publicNoteResponse
		decode(t, rec, &resp)
		if resp.Locked || resp.Content != "the launch codes" || !resp.IsOwner {
			t.Errorf("expected owner view with content, got %+v", resp)
		}
	})

	t.Run("reveal with correct secret", func(t *testing.T) {
		c, rec := env.request(http.MethodPost, "/n/"+note.Slug+"/reveal", `{"secret":"hunter2"}`, nil)
		c.SetParamNames("slug")
		c.SetParamValues(note.Slug)
		if err := h.Reveal(c); err != nil {
			t.Fatalf("reveal: %v", err)
		}
		var resp revealResponse
		decode(t, rec, &resp)
		if resp.Content != "the launch codes" {
			t.Errorf("unexpected content %q", resp.Content)
		}
	})

	t.Run("reveal with wrong secret", func(t *testing.T) {
		c, _ := env.request(http.MethodPost, "/n/"+note.Slug+"/reveal", `{"secret":"hunter3"}`, nil)
		c.SetParamNames("slug")
		c.SetParamValues(note.Slug)
		if err := h.Reveal(c); !errors.Is(err, domain.ErrInvalidSecret) {
			t.Fatalf("expected ErrInvalidSecret, got %v", err)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		c, _ := env.request(http.MethodGet, "/n/missing", "", nil)
		c.SetParamNames("slug")
		c.SetParamValues("missing")
		if err := h.View(c); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestNoteHandler_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := seedUsers(t, env)
	h := NewNoteHandler(env.notes)
	note := createNote(t, env, h, alice, secretNoteBody)

	c, rec := env.request(http.MethodPut, "/v1/notes/"+note.Slug, `{"title":"Open","description":"d","content":"public now","is_secret":false}`, alice)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	var updated noteResponse
	decode(t, rec, &updated)
	if updated.IsSecret || updated.Title != "Open" {
		t.Errorf("expected public note after update, got %+v", updated)
	}

	c, _ = env.request(http.MethodPut, "/v1/notes/"+note.Slug, `{"title":"Mine","description":"d","content":"c"}`, bob)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}

	c, _ = env.request(http.MethodDelete, "/v1/notes/"+note.Slug, "", bob)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Delete(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner delete, got %v", err)
	}

	c, rec = env.request(http.MethodDelete, "/v1/notes/"+note.Slug, "", alice)
	c.SetParamNames("slug")
	c.SetParamValues(note.Slug)
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestNoteHandler_List(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := seedUsers(t, env)
	h := NewNoteHandler(env.notes)

	createNote(t, env, h, alice, `{"title":"Banana","description":"d","content":"yellow"}`)
	createNote(t, env, h, alice, `{"title":"apple","description":"d","content":"red","is_secret":true,"secret":"s"}`)
	createNote(t, env, h, bob, `{"title":"Cherry","description":"d","content":"dark"}`)

	c, rec := env.request(http.MethodGet, "/v1/notes?sort=title&order=asc", "", alice)
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	var all noteListResponse
	decode(t, rec, &all)
	if all.Count != 2 || all.Notes[0].Title != "apple" || all.Notes[1].Title != "Banana" {
		t.Fatalf("expected alice's notes sorted by title, got %+v", all.Notes)
	}

	c, rec = env.request(http.MethodGet, "/v1/notes?filter=secret&search=RED", "", alice)
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	var secret noteListResponse
	decode(t, rec, &secret)
	if secret.Count != 1 || secret.Notes[0].Title != "apple" {
		t.Fatalf("expected only the secret note, got %+v", secret.Notes)
	}

	c, _ = env.request(http.MethodGet, "/v1/notes?filter=hidden", "", alice)
	if err := h.List(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown filter, got %v", err)
	}
}
