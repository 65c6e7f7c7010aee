package social

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryUsers(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "ada", "ada@example.com", "digest")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned id")
	}

	if _, err := s.CreateUser(ctx, "ada2", "ADA@example.com", "digest"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate email: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.UserByEmail(ctx, "ada@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("UserByEmail: %+v, %v", got, err)
	}
	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestInMemoryEventLifecycle(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "owner", "owner@example.com", "d")
	guest, _ := s.CreateUser(ctx, "guest", "guest@example.com", "d")

	e, err := s.CreateEvent(ctx, Event{
		Title:   "Picnic",
		Date:    time.Now().Add(48 * time.Hour),
		OwnerID: owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if _, err := s.EventByID(ctx, e.ID, guest.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign owner read: got %v, want ErrNotFound", err)
	}

	if err := s.ShareEvent(ctx, e.ID, guest.ID); err != nil {
		t.Fatalf("ShareEvent: %v", err)
	}
	if err := s.ShareEvent(ctx, e.ID, guest.ID); !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("double share: got %v, want ErrAlreadyShared", err)
	}

	invites, err := s.PendingInvites(ctx, guest.ID)
	if err != nil || len(invites) != 1 {
		t.Fatalf("PendingInvites: %v, %v", invites, err)
	}
	if invites[0].OwnerEmail != "owner@example.com" {
		t.Fatalf("invite owner email: %q", invites[0].OwnerEmail)
	}

	prev, err := s.RSVP(ctx, e.ID, guest.ID, StatusAttending)
	if err != nil {
		t.Fatalf("RSVP: %v", err)
	}
	if prev != StatusPending {
		t.Fatalf("previous status: got %q, want %q", prev, StatusPending)
	}
	if prev, err := s.RSVP(ctx, e.ID, guest.ID, StatusNotAttending); !errors.Is(err, ErrAlreadyRSVPed) || prev != StatusAttending {
		t.Fatalf("second RSVP: prev=%q err=%v", prev, err)
	}

	// Answered invites drop out of the pending list.
	invites, _ = s.PendingInvites(ctx, guest.ID)
	if len(invites) != 0 {
		t.Fatalf("pending after answer: %v", invites)
	}

	if err := s.DeleteEvent(ctx, e.ID, guest.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteEvent(ctx, e.ID, owner.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
}

func TestInMemoryChats(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "alice@example.com", "d")
	bob, _ := s.CreateUser(ctx, "bob", "bob@example.com", "d")

	c, err := s.CreateChat(ctx, "weekend plans", true, alice.ID)
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if err := s.AddChatMembers(ctx, c.ID, []int64{alice.ID, bob.ID}); err != nil {
		t.Fatalf("AddChatMembers: %v", err)
	}

	member, err := s.IsChatMember(ctx, c.ID, bob.ID)
	if err != nil || !member {
		t.Fatalf("IsChatMember: %v, %v", member, err)
	}

	if _, err := s.AddMessage(ctx, c.ID, bob.ID, "saturday works"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if _, err := s.AddMessage(ctx, c.ID, alice.ID, "saturday it is"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	msgs, err := s.RecentMessages(ctx, c.ID, 50)
	if err != nil || len(msgs) != 2 {
		t.Fatalf("RecentMessages: %v, %v", msgs, err)
	}
	// Newest first.
	if msgs[0].Content != "saturday it is" || msgs[0].Username != "alice" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}

	if err := s.RemoveChatMember(ctx, c.ID, bob.ID); err != nil {
		t.Fatalf("RemoveChatMember: %v", err)
	}
	if err := s.RemoveChatMember(ctx, c.ID, bob.ID); !errors.Is(err, ErrNotMember) {
		t.Fatalf("double leave: got %v, want ErrNotMember", err)
	}

	chats, _ := s.ChatsByUser(ctx, bob.ID)
	if len(chats) != 0 {
		t.Fatalf("chats after leaving: %v", chats)
	}
}

func TestInMemoryFriends(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if err := s.AddFriend(ctx, 1, 2); err != nil {
		t.Fatalf("AddFriend: %v", err)
	}
	if err := s.AddFriend(ctx, 1, 2); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("duplicate friendship: got %v, want ErrAlreadyFriends", err)
	}

	// Directed: 2 did not befriend 1.
	ok, err := s.AreFriends(ctx, 2, []int64{1})
	if err != nil || ok {
		t.Fatalf("reverse friendship: %v, %v", ok, err)
	}

	ok, err = s.AreFriends(ctx, 1, []int64{2})
	if err != nil || !ok {
		t.Fatalf("AreFriends: %v, %v", ok, err)
	}
	ok, _ = s.AreFriends(ctx, 1, []int64{2, 3})
	if ok {
		t.Fatal("partial friend list should not pass")
	}

	if err := s.RemoveFriend(ctx, 1, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove stranger: got %v, want ErrNotFound", err)
	}
	if err := s.RemoveFriend(ctx, 1, 2); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
}

func TestInMemoryBlacklist(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "token-a")
	if err != nil || revoked {
		t.Fatalf("fresh token: %v, %v", revoked, err)
	}

	if err := s.Revoke(ctx, "token-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := s.Revoke(ctx, "token-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("repeat Revoke: %v", err)
	}

	revoked, err = s.IsRevoked(ctx, "token-a")
	if err != nil || !revoked {
		t.Fatalf("revoked token: %v, %v", revoked, err)
	}

	// A blacklist entry past its expiry no longer blocks anything.
	if err := s.Revoke(ctx, "token-b", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke expired: %v", err)
	}
	revoked, err = s.IsRevoked(ctx, "token-b")
	if err != nil || revoked {
		t.Fatalf("expired entry: %v, %v", revoked, err)
	}

	removed, err := s.PurgeExpired(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("PurgeExpired: %d, %v", removed, err)
	}
}
