package social

import "errors"

var (
	ErrNotFound       = errors.New("social: not found")
	ErrAlreadyExists  = errors.New("social: already exists")
	ErrNotMember      = errors.New("social: not a chat member")
	ErrAlreadyMember  = errors.New("social: already a chat member")
	ErrAlreadyShared  = errors.New("social: event already shared")
	ErrAlreadyRSVPed  = errors.New("social: rsvp already recorded")
	ErrNotFriends     = errors.New("social: users are not friends")
	ErrAlreadyFriends = errors.New("social: friendship already exists")
)
