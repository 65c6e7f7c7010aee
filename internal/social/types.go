package social

import "time"

// Attendee status values for event RSVPs. Pending is assigned when an
// event is shared; the invitee later answers Attending/Not Attending.
const (
	StatusPending      = "Pending"
	StatusAttending    = "Attending"
	StatusNotAttending = "Not Attending"
)

// ValidRSVP reports whether status is an answer an attendee may give.
func ValidRSVP(status string) bool {
	return status == StatusAttending || status == StatusNotAttending
}

// User is a registered account. The password digest never leaves the
// server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is a scheduled gathering owned by a single user.
type Event struct {
	ID          int64     `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	OwnerID     int64     `json:"userId"`
	WithWho     []string  `json:"withWho"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventUpdate carries the editable event fields.
type EventUpdate struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
}

// EventInvite is a pending event share as seen by the invitee.
type EventInvite struct {
	EventID     int64     `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	OwnerID     int64     `json:"ownerId"`
	OwnerEmail  string    `json:"ownerEmail"`
}

// Chat is a conversation between two or more members.
type Chat struct {
	ID          int64     `json:"chatId"`
	Name        string    `json:"chatName"`
	IsGroupChat bool      `json:"isGroupChat"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is a single chat message, joined with the sender's username
// for display.
type Message struct {
	ID        int64     `json:"messageId"`
	ChatID    int64     `json:"chatId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
