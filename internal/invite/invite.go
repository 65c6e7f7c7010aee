// Package invite issues and redeems signed chat invitation links.
package invite

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gatherly.app/internal/auth"
)

// TTL is how long an invitation link stays valid.
const TTL = 24 * time.Hour

var (
	// ErrExpired means the invite token was valid once but its window
	// has passed.
	ErrExpired = errors.New("invite: token expired")
	// ErrInvalid covers malformed, tampered or foreign-domain tokens.
	ErrInvalid = errors.New("invite: token invalid")
	// ErrForbidden means the token is genuine but presented by someone
	// other than the invitee it names.
	ErrForbidden = errors.New("invite: token issued to another user")
	// ErrChatGone means the chat the invite points at no longer exists.
	ErrChatGone = errors.New("invite: chat does not exist")
	// ErrNotMember means the inviter is not in the chat they are
	// inviting to.
	ErrNotMember = errors.New("invite: inviter is not a chat member")
)

// ChatDirectory is the slice of the store the invite service needs.
type ChatDirectory interface {
	ChatExists(ctx context.Context, chatID int64) (bool, error)
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// Service mints invitation tokens with a codec dedicated to the invite
// domain, so session tokens can never be replayed as invites and vice
// versa.
type Service struct {
	codec   *auth.Codec
	chats   ChatDirectory
	baseURL string
}

// NewService wires an invite service. baseURL is the public origin the
// accept link is built on, without a trailing slash.
func NewService(codec *auth.Codec, chats ChatDirectory, baseURL string) (*Service, error) {
	if codec == nil {
		return nil, errors.New("invite: codec is required")
	}
	if chats == nil {
		return nil, errors.New("invite: chat directory is required")
	}
	if baseURL == "" {
		return nil, errors.New("invite: base URL is required")
	}
	return &Service{codec: codec, chats: chats, baseURL: baseURL}, nil
}

// CreateInvite issues a link inviting inviteeID into chatID. The
// inviter must already be a member.
func (s *Service) CreateInvite(ctx context.Context, chatID, inviterID, inviteeID int64) (string, error) {
	member, err := s.chats.IsChatMember(ctx, chatID, inviterID)
	if err != nil {
		return "", fmt.Errorf("invite: membership check: %w", err)
	}
	if !member {
		return "", ErrNotMember
	}

	token, err := s.codec.Issue(map[string]any{
		"chatId":        chatID,
		"inviterUserId": inviterID,
		"inviteeUserId": inviteeID,
	}, TTL)
	if err != nil {
		return "", fmt.Errorf("invite: issue token: %w", err)
	}
	return s.baseURL + "/api/chats/invite/accept?token=" + url.QueryEscape(token), nil
}

// AcceptInvite verifies a presented token and returns the chat the
// caller may now join. The invitee check runs before the existence
// check so a stolen link never confirms whether a chat exists.
func (s *Service) AcceptInvite(ctx context.Context, token string, callerID int64) (int64, error) {
	claims, err := s.codec.Verify(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return 0, ErrExpired
	case err != nil:
		return 0, ErrInvalid
	}

	chatID, ok := auth.Int64Claim(claims, "chatId")
	if !ok {
		return 0, ErrInvalid
	}
	inviteeID, ok := auth.Int64Claim(claims, "inviteeUserId")
	if !ok {
		return 0, ErrInvalid
	}

	if inviteeID != callerID {
		return 0, ErrForbidden
	}

	exists, err := s.chats.ChatExists(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("invite: chat lookup: %w", err)
	}
	if !exists {
		return 0, ErrChatGone
	}
	return chatID, nil
}
