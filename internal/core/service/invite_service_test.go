package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func newInviteFixture() (*InviteService, *stubInviteRepo, *stubUserRepo) {
	users := newStubUserRepo()
	invites := newStubInviteRepo()
	return NewInviteService(invites, users, 0, discardLogger), invites, users
}

func TestInviteService_Create(t *testing.T) {
	svc, _, users := newInviteFixture()
	adminID := users.seedUser("admin", true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	inv, err := svc.Create(context.Background(), adminID, nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !inviteCodePattern.MatchString(inv.Code) {
		t.Fatalf("unexpected invite code %q", inv.Code)
	}
	if inv.CreatedBy != adminID || inv.IsUsed {
		t.Fatalf("unexpected invite: %+v", inv)
	}
	if inv.ExpiresAt == nil || !inv.ExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("expected expiry 24h after creation, got %v", inv.ExpiresAt)
	}
	if inv.State(now) != domain.InviteActive {
		t.Fatalf("fresh invite should be active")
	}
}

func TestInviteService_Create_IgnoresRequestedExpiry(t *testing.T) {
	svc, _, users := newInviteFixture()
	adminID := users.seedUser("admin", true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	days := 30
	inv, err := svc.Create(context.Background(), adminID, &days)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !inv.ExpiresAt.Equal(now.Add(DefaultInviteTTL)) {
		t.Fatalf("expected fixed TTL, got %v", inv.ExpiresAt)
	}
}

func TestInviteService_FindActiveAndConsume(t *testing.T) {
	svc, repo, _ := newInviteFixture()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	repo.seedInvite("CODE0001", "admin-1", now.Add(time.Hour))

	inv, err := svc.FindActive(context.Background(), "CODE0001")
	if err != nil || inv == nil {
		t.Fatalf("expected active invite, got %v %v", inv, err)
	}

	used, err := svc.Consume(context.Background(), "CODE0001", "user-1")
	if err != nil || !used {
		t.Fatalf("expected invite consumed, got %v %v", used, err)
	}
	if got := repo.byCode("CODE0001"); got.UsedBy != "user-1" || !got.UsedAt.Equal(now) {
		t.Fatalf("unexpected consumed invite %+v", got)
	}

	used, err = svc.Consume(context.Background(), "CODE0001", "user-2")
	if err != nil || used {
		t.Fatalf("second consume must report false, got %v %v", used, err)
	}
	if inv, _ := svc.FindActive(context.Background(), "CODE0001"); inv != nil {
		t.Fatalf("consumed invite must not be active, got %+v", inv)
	}
}

func TestInviteService_Create_NonAdmin(t *testing.T) {
	svc, invites, users := newInviteFixture()
	userID := users.seedUser("regular", false)

	for _, id := range []string{userID, "", "ghost"} {
		if _, err := svc.Create(context.Background(), id, nil); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden for %q, got %v", id, err)
		}
	}
	if len(invites.byID) != 0 {
		t.Fatalf("no invite must be stored for non-admins")
	}
}

func TestInviteService_Create_CodeExhausted(t *testing.T) {
	svc, invites, users := newInviteFixture()
	adminID := users.seedUser("admin", true)
	invites.seedInvite("SAMECODE", adminID, time.Now().Add(time.Hour))
	svc.newCode = func() string { return "SAMECODE" }

	_, err := svc.Create(context.Background(), adminID, nil)
	if !errors.Is(err, domain.ErrGenerationExhausted) {
		t.Fatalf("expected ErrGenerationExhausted, got %v", err)
	}
}

func TestInviteService_ListScopedToCreator(t *testing.T) {
	svc, _, users := newInviteFixture()
	alice := users.seedUser("alice", true)
	bob := users.seedUser("bob", true)

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), alice, nil); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), bob, nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	list, err := svc.List(context.Background(), alice)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 invites for alice, got %d", len(list))
	}
	for _, inv := range list {
		if inv.CreatedBy != alice {
			t.Fatalf("list leaked invite of %q", inv.CreatedBy)
		}
	}
}

func TestInviteService_List_NonAdmin(t *testing.T) {
	svc, _, users := newInviteFixture()
	userID := users.seedUser("regular", false)

	if _, err := svc.List(context.Background(), userID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestInviteService_Delete(t *testing.T) {
	svc, invites, users := newInviteFixture()
	alice := users.seedUser("alice", true)
	bob := users.seedUser("bob", true)
	inv, _ := svc.Create(context.Background(), alice, nil)

	if ok, err := svc.Delete(context.Background(), inv.ID, bob); ok || err != nil {
		t.Fatalf("other admin must not delete: %v %v", ok, err)
	}
	if _, exists := invites.byID[inv.ID]; !exists {
		t.Fatalf("invite must survive a foreign delete")
	}

	if ok, _ := svc.Delete(context.Background(), inv.ID, alice); !ok {
		t.Fatalf("creator delete must report true")
	}
	if ok, _ := svc.Delete(context.Background(), inv.ID, alice); ok {
		t.Fatalf("second delete must report false")
	}
}

func TestInviteService_Delete_NonAdmin(t *testing.T) {
	svc, _, users := newInviteFixture()
	userID := users.seedUser("regular", false)

	if _, err := svc.Delete(context.Background(), "invite-1", userID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestInviteState(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		inv  domain.Invite
		want domain.InviteState
	}{
		{"active", domain.Invite{ExpiresAt: &future}, domain.InviteActive},
		{"no expiry", domain.Invite{}, domain.InviteActive},
		{"expired", domain.Invite{ExpiresAt: &past}, domain.InviteExpired},
		{"expires now", domain.Invite{ExpiresAt: &now}, domain.InviteExpired},
		{"used wins over expired", domain.Invite{IsUsed: true, ExpiresAt: &past}, domain.InviteUsed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.inv.State(now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
