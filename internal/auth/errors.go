package auth

import "errors"

var (
	// ErrTokenExpired indicates the token was well-formed and correctly
	// signed but its expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenMalformed covers every other verification failure: bad
	// signature, wrong signing domain, unparseable structure. Kept
	// deliberately coarse so clients cannot probe signature validity.
	ErrTokenMalformed = errors.New("auth: token malformed")
)
