package domain

import "time"

// Note is a text note owned by a single user and shared through its slug.
type Note struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	IsSecret    bool      `json:"is_secret"`
	SecretHash  string    `json:"-"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the note.
func (n *Note) OwnedBy(userID string) bool {
	return userID != "" && n.UserID == userID
}

// SecretConsistent reports whether the secret flag and hash agree:
// a secret note always carries a hash and a public note never does.
func (n *Note) SecretConsistent() bool {
	return n.IsSecret == (n.SecretHash != "")
}

// SecretOp selects what an update does with the stored secret hash.
type SecretOp int

const (
	// SecretKeep leaves the stored hash untouched.
	SecretKeep SecretOp = iota
	// SecretSet replaces the stored hash with SecretChange.Hash.
	SecretSet
	// SecretClear removes the hash field entirely.
	SecretClear
)

func (o SecretOp) String() string {
	switch o {
	case SecretSet:
		return "set"
	case SecretClear:
		return "clear"
	default:
		return "keep"
	}
}

// SecretChange is the secret part of a NotePatch.
type SecretChange struct {
	Op   SecretOp
	Hash string // only meaningful for SecretSet
}

// NotePatch is a full replacement of the mutable note fields.
type NotePatch struct {
	Title       string
	Description string
	Content     string
	IsSecret    bool
	Secret      SecretChange
	UpdatedAt   time.Time
}

// Apply returns a copy of n with the patch applied.
func (p NotePatch) Apply(n Note) Note {
	n.Title = p.Title
	n.Description = p.Description
	n.Content = p.Content
	n.IsSecret = p.IsSecret
	n.UpdatedAt = p.UpdatedAt
	switch p.Secret.Op {
	case SecretSet:
		n.SecretHash = p.Secret.Hash
	case SecretClear:
		n.SecretHash = ""
	}
	return n
}

// NoteVisibility filters note listings by secrecy.
type NoteVisibility string

const (
	VisibilityAll    NoteVisibility = "all"
	VisibilityPublic NoteVisibility = "public"
	VisibilitySecret NoteVisibility = "secret"
)

// NoteSort is the field note listings are ordered by.
type NoteSort string

const (
	SortCreated NoteSort = "created"
	SortUpdated NoteSort = "updated"
	SortTitle   NoteSort = "title"
)
