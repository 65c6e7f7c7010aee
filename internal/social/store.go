package social

import "context"

// Store describes the persistence operations the scheduling domain
// needs. Implemented by the Postgres store and by InMemory.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, username, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)

	// Events. Reads and writes are owner-scoped where the original
	// route was: an event id alone never grants access to someone
	// else's event.
	CreateEvent(ctx context.Context, e Event) (Event, error)
	EventsByOwner(ctx context.Context, ownerID int64) ([]Event, error)
	EventByID(ctx context.Context, eventID, ownerID int64) (Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID int64, upd EventUpdate) (Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID int64) error

	// ShareEvent records a Pending attendee row. ErrAlreadyShared when
	// the target already has one.
	ShareEvent(ctx context.Context, eventID, withUserID int64) error

	// RSVP records or updates an attendance answer and returns the
	// previous status ("" when the user had none). A previous answer
	// other than Pending is rejected with ErrAlreadyRSVPed.
	RSVP(ctx context.Context, eventID, userID int64, status string) (previous string, err error)

	// PendingInvites lists events shared with userID and not yet
	// answered, newest event date last.
	PendingInvites(ctx context.Context, userID int64) ([]EventInvite, error)

	// Chats.
	CreateChat(ctx context.Context, name string, isGroup bool, createdBy int64) (Chat, error)
	ChatExists(ctx context.Context, chatID int64) (bool, error)
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
	AddChatMembers(ctx context.Context, chatID int64, userIDs []int64) error
	RemoveChatMember(ctx context.Context, chatID, userID int64) error
	ChatsByUser(ctx context.Context, userID int64) ([]Chat, error)
	AddMessage(ctx context.Context, chatID, userID int64, content string) (int64, error)
	RecentMessages(ctx context.Context, chatID int64, limit int) ([]Message, error)

	// Friends. Friendship is directed, as in the original schema: A
	// adding B does not make B a friend of A.
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	AreFriends(ctx context.Context, userID int64, friendIDs []int64) (bool, error)
	Friends(ctx context.Context, userID int64) ([]int64, error)
}
