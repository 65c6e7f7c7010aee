package invite

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"gatherly.app/internal/auth"
)

type fakeChats struct {
	chats   map[int64]struct{}
	members map[int64]map[int64]struct{}
	err     error
}

func (f *fakeChats) ChatExists(ctx context.Context, chatID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.chats[chatID]
	return ok, nil
}

func (f *fakeChats) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.members[chatID][userID]
	return ok, nil
}

func newFakeChats() *fakeChats {
	return &fakeChats{
		chats:   map[int64]struct{}{5: {}},
		members: map[int64]map[int64]struct{}{5: {1: {}}},
	}
}

func newService(t *testing.T, chats ChatDirectory, opts ...auth.CodecOption) *Service {
	t.Helper()
	codec, err := auth.NewCodec("invite", "invite-secret", opts...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc, err := NewService(codec, chats, "https://gatherly.test")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatalf("link %q carries no token", link)
	}
	return token
}

func TestInviteRoundTrip(t *testing.T) {
	svc := newService(t, newFakeChats())
	ctx := context.Background()

	link, err := svc.CreateInvite(ctx, 5, 1, 2)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	if !strings.HasPrefix(link, "https://gatherly.test/api/chats/invite/accept?token=") {
		t.Fatalf("unexpected link: %q", link)
	}

	chatID, err := svc.AcceptInvite(ctx, tokenFromLink(t, link), 2)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if chatID != 5 {
		t.Fatalf("chat id: got %d, want 5", chatID)
	}
}

func TestCreateInviteRequiresMembership(t *testing.T) {
	svc := newService(t, newFakeChats())

	if _, err := svc.CreateInvite(context.Background(), 5, 99, 2); !errors.Is(err, ErrNotMember) {
		t.Fatalf("non-member inviter: got %v, want ErrNotMember", err)
	}
}

func TestAcceptInviteWrongCaller(t *testing.T) {
	chats := newFakeChats()
	svc := newService(t, chats)
	ctx := context.Background()

	link, err := svc.CreateInvite(ctx, 5, 1, 2)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	token := tokenFromLink(t, link)

	// The invitee check fires before any chat lookup, even when the
	// chat is gone.
	chats.chats = map[int64]struct{}{}
	if _, err := svc.AcceptInvite(ctx, token, 3); !errors.Is(err, ErrForbidden) {
		t.Fatalf("wrong caller: got %v, want ErrForbidden", err)
	}

	if _, err := svc.AcceptInvite(ctx, token, 2); !errors.Is(err, ErrChatGone) {
		t.Fatalf("deleted chat: got %v, want ErrChatGone", err)
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	now := time.Now()
	clock := &now
	svc := newService(t, newFakeChats(), auth.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	link, err := svc.CreateInvite(ctx, 5, 1, 2)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	token := tokenFromLink(t, link)

	later := now.Add(TTL + time.Second)
	clock = &later
	if _, err := svc.AcceptInvite(ctx, token, 2); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired invite: got %v, want ErrExpired", err)
	}
}

func TestAcceptInviteRejectsForeignTokens(t *testing.T) {
	svc := newService(t, newFakeChats())
	ctx := context.Background()

	if _, err := svc.AcceptInvite(ctx, "not-a-token", 2); !errors.Is(err, ErrInvalid) {
		t.Fatalf("garbage token: got %v, want ErrInvalid", err)
	}

	// A session token signed for the auth domain must not open chats,
	// even with matching claims.
	sessionCodec, err := auth.NewCodec("auth", "invite-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	session, err := sessionCodec.Issue(map[string]any{
		"chatId":        int64(5),
		"inviterUserId": int64(1),
		"inviteeUserId": int64(2),
	}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.AcceptInvite(ctx, session, 2); !errors.Is(err, ErrInvalid) {
		t.Fatalf("cross-domain token: got %v, want ErrInvalid", err)
	}
}
