package handler

import (
	"time"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username        string `json:"username"         validate:"required,min=3,max=32"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
	InviteCode      string `json:"invite_code"      validate:"required,len=8,alphanum"`
}

type loginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// --- Notes ---

type noteRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=500"`
	Content     string `json:"content"     validate:"required"`
	IsSecret    bool   `json:"is_secret"`
	// Secret is required when a note becomes secret; blank keeps the current one.
	Secret string `json:"secret,omitempty" validate:"omitempty,max=72"`
}

func (r noteRequest) toInput() ports.NoteInput {
	return ports.NoteInput{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		IsSecret:    r.IsSecret,
		Secret:      r.Secret,
	}
}

type listNotesQuery struct {
	Search string `query:"search"`
	Filter string `query:"filter" validate:"omitempty,oneof=all public secret"`
	Sort   string `query:"sort"   validate:"omitempty,oneof=created updated title"`
	Order  string `query:"order"  validate:"omitempty,oneof=asc desc"`
}

type noteResponse struct {
	Identifier  string    `json:"identifier"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	IsSecret    bool      `json:"is_secret"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Links       noteLinks `json:"_links"`
}

type noteLinks struct {
	Self   string `json:"self"`
	Public string `json:"public"`
}

type noteListResponse struct {
	Notes []noteResponse `json:"notes"`
	Count int            `json:"count"`
}

// publicNoteResponse is what anyone holding the link sees. Content is
// omitted for secret notes until revealed.
type publicNoteResponse struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	IsSecret    bool      `json:"is_secret"`
	IsOwner     bool      `json:"is_owner"`
	Locked      bool      `json:"locked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type revealRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type revealResponse struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		Identifier:  n.Identifier,
		Slug:        n.Slug,
		Title:       n.Title,
		Description: n.Description,
		Content:     n.Content,
		IsSecret:    n.IsSecret,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		Links: noteLinks{
			Self:   "/v1/notes/" + n.Slug,
			Public: "/n/" + n.Slug,
		},
	}
}

func toPublicNoteResponse(v *ports.NoteView) publicNoteResponse {
	return publicNoteResponse{
		Slug:        v.Note.Slug,
		Title:       v.Note.Title,
		Description: v.Note.Description,
		Content:     v.Content,
		IsSecret:    v.Note.IsSecret,
		IsOwner:     v.IsOwner,
		Locked:      v.Note.IsSecret && !v.IsOwner,
		CreatedAt:   v.Note.CreatedAt,
		UpdatedAt:   v.Note.UpdatedAt,
	}
}

// --- Invites ---

type createInviteRequest struct {
	// ExpiresInDays is accepted for compatibility; invites always expire
	// after the configured TTL.
	ExpiresInDays *int `json:"expires_in_days,omitempty" validate:"omitempty,gt=0"`
}

type inviteResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

type inviteListResponse struct {
	Invites []inviteResponse `json:"invites"`
	Count   int              `json:"count"`
}

func toInviteResponse(inv *domain.Invite, now time.Time) inviteResponse {
	return inviteResponse{
		ID:        inv.ID,
		Code:      inv.Code,
		State:     string(inv.State(now)),
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
		UsedBy:    inv.UsedBy,
		UsedAt:    inv.UsedAt,
	}
}
