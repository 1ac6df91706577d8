package domain

import "time"

// InviteState is the derived lifecycle state of an invite.
type InviteState string

const (
	InviteActive  InviteState = "active"
	InviteUsed    InviteState = "used"
	InviteExpired InviteState = "expired"
)

// Invite is a single-use, time-limited registration code.
type Invite struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	IsUsed    bool       `json:"is_used"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// State derives the invite state at now. Expiry is never stored: an invite
// read as active can be observed as expired later without any write.
func (i *Invite) State(now time.Time) InviteState {
	if i.IsUsed {
		return InviteUsed
	}
	if i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
		return InviteExpired
	}
	return InviteActive
}

// Active reports whether the invite can still be consumed at now.
func (i *Invite) Active(now time.Time) bool {
	return i.State(now) == InviteActive
}
