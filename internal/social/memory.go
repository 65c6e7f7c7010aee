package social

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gatherly.app/internal/auth"
)

// InMemory implements Store and auth.BlacklistStore with in-process
// concurrency safety. Used in tests and when no database DSN is
// configured.
type InMemory struct {
	mu sync.RWMutex

	users      map[int64]*User
	emailIndex map[string]int64
	nextUserID int64

	events      map[int64]*Event
	attendees   map[int64]map[int64]string // eventID -> userID -> status
	nextEventID int64

	chats       map[int64]*Chat
	chatMembers map[int64]map[int64]struct{}
	messages    []Message
	nextChatID  int64
	nextMsgID   int64

	friends map[int64]map[int64]struct{} // userID -> friendID set

	revoked map[string]time.Time // token digest -> expiry
}

var _ Store = (*InMemory)(nil)
var _ auth.BlacklistStore = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:       make(map[int64]*User),
		emailIndex:  make(map[string]int64),
		events:      make(map[int64]*Event),
		attendees:   make(map[int64]map[int64]string),
		chats:       make(map[int64]*Chat),
		chatMembers: make(map[int64]map[int64]struct{}),
		friends:     make(map[int64]map[int64]struct{}),
		revoked:     make(map[string]time.Time),
	}
}

// --- users ---

func (s *InMemory) CreateUser(ctx context.Context, username, email, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.emailIndex[key]; exists {
		return User{}, ErrAlreadyExists
	}
	s.nextUserID++
	u := &User{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.emailIndex[key] = u.ID
	return *u, nil
}

func (s *InMemory) UserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return *s.users[id], nil
}

func (s *InMemory) UserByID(ctx context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

// --- events ---

func (s *InMemory) CreateEvent(ctx context.Context, e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	e.ID = s.nextEventID
	e.CreatedAt = time.Now().UTC()
	stored := e
	s.events[e.ID] = &stored
	// The creator attends their own event.
	s.attendees[e.ID] = map[int64]string{e.OwnerID: StatusAttending}
	return e, nil
}

func (s *InMemory) EventsByOwner(ctx context.Context, ownerID int64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) EventByID(ctx context.Context, eventID, ownerID int64) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[eventID]
	if !ok || e.OwnerID != ownerID {
		return Event{}, ErrNotFound
	}
	return *e, nil
}

func (s *InMemory) UpdateEvent(ctx context.Context, eventID, ownerID int64, upd EventUpdate) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok || e.OwnerID != ownerID {
		return Event{}, ErrNotFound
	}
	e.Title = upd.Title
	e.Description = upd.Description
	e.Date = upd.Date
	e.Location = upd.Location
	return *e, nil
}

func (s *InMemory) DeleteEvent(ctx context.Context, eventID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.events, eventID)
	delete(s.attendees, eventID)
	return nil
}

func (s *InMemory) ShareEvent(ctx context.Context, eventID, withUserID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return ErrNotFound
	}
	if _, shared := s.attendees[eventID][withUserID]; shared {
		return ErrAlreadyShared
	}
	s.attendees[eventID][withUserID] = StatusPending
	return nil
}

func (s *InMemory) RSVP(ctx context.Context, eventID, userID int64, status string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return "", ErrNotFound
	}
	previous := s.attendees[eventID][userID]
	if previous != "" && previous != StatusPending {
		return previous, ErrAlreadyRSVPed
	}
	s.attendees[eventID][userID] = status
	return previous, nil
}

func (s *InMemory) PendingInvites(ctx context.Context, userID int64) ([]EventInvite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []EventInvite
	for eventID, byUser := range s.attendees {
		if byUser[userID] != StatusPending {
			continue
		}
		e, ok := s.events[eventID]
		if !ok {
			continue
		}
		invite := EventInvite{
			EventID:     e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Location:    e.Location,
			OwnerID:     e.OwnerID,
		}
		if owner, ok := s.users[e.OwnerID]; ok {
			invite.OwnerEmail = owner.Email
		}
		out = append(out, invite)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// --- chats ---

func (s *InMemory) CreateChat(ctx context.Context, name string, isGroup bool, createdBy int64) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChatID++
	c := &Chat{
		ID:          s.nextChatID,
		Name:        name,
		IsGroupChat: isGroup,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	s.chats[c.ID] = c
	s.chatMembers[c.ID] = make(map[int64]struct{})
	return *c, nil
}

func (s *InMemory) ChatExists(ctx context.Context, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.chats[chatID]
	return ok, nil
}

func (s *InMemory) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.chatMembers[chatID][userID]
	return ok, nil
}

func (s *InMemory) AddChatMembers(ctx context.Context, chatID int64, userIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.chatMembers[chatID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range userIDs {
		members[id] = struct{}{}
	}
	return nil
}

func (s *InMemory) RemoveChatMember(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.chatMembers[chatID]
	if !ok {
		return ErrNotFound
	}
	if _, member := members[userID]; !member {
		return ErrNotMember
	}
	delete(members, userID)
	return nil
}

func (s *InMemory) ChatsByUser(ctx context.Context, userID int64) ([]Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Chat
	for chatID, members := range s.chatMembers {
		if _, member := members[userID]; member {
			out = append(out, *s.chats[chatID])
		}
	}
	// Newest chats first, matching the listing order clients expect.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) AddMessage(ctx context.Context, chatID, userID int64, content string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return 0, ErrNotFound
	}
	s.nextMsgID++
	msg := Message{
		ID:        s.nextMsgID,
		ChatID:    chatID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if u, ok := s.users[userID]; ok {
		msg.Username = u.Username
	}
	s.messages = append(s.messages, msg)
	return msg.ID, nil
}

func (s *InMemory) RecentMessages(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Message
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if s.messages[i].ChatID == chatID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

// --- friends ---

func (s *InMemory) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.friends[userID] == nil {
		s.friends[userID] = make(map[int64]struct{})
	}
	if _, exists := s.friends[userID][friendID]; exists {
		return ErrAlreadyFriends
	}
	s.friends[userID][friendID] = struct{}{}
	return nil
}

func (s *InMemory) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.friends[userID][friendID]; !exists {
		return ErrNotFound
	}
	delete(s.friends[userID], friendID)
	return nil
}

func (s *InMemory) AreFriends(ctx context.Context, userID int64, friendIDs []int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range friendIDs {
		if _, ok := s.friends[userID][id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *InMemory) Friends(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.friends[userID]))
	for id := range s.friends[userID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// --- token blacklist ---

func (s *InMemory) Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	digest := auth.HashToken(rawToken)
	if _, exists := s.revoked[digest]; exists {
		return nil
	}
	s.revoked[digest] = expiresAt.UTC()
	return nil
}

func (s *InMemory) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.revoked[auth.HashToken(rawToken)]
	if !ok {
		return false, nil
	}
	// Entries past their own expiry no longer matter: the token they
	// shadow has already expired on its own.
	return time.Now().Before(expiry), nil
}

func (s *InMemory) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for digest, expiry := range s.revoked {
		if !now.Before(expiry) {
			delete(s.revoked, digest)
			removed++
		}
	}
	return removed, nil
}
