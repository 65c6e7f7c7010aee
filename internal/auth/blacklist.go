package auth

import (
	"context"
	"time"
)

// BlacklistStore records revoked-but-not-yet-expired tokens by digest.
// It is the only coordination point between logout and the per-request
// authentication check: a revoked token must be rejected even while
// its signature is still cryptographically valid.
type BlacklistStore interface {
	// Revoke persists the digest of rawToken until expiresAt.
	// Revoking the same token twice is a no-op.
	Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error

	// IsRevoked reports whether rawToken's digest is blacklisted and
	// not yet past its own expiry. Storage failures must be returned,
	// never collapsed into false.
	IsRevoked(ctx context.Context, rawToken string) (bool, error)

	// PurgeExpired deletes entries whose expiry has passed and returns
	// the number removed. Entries past expiry are dead weight either
	// way: the token they shadow has already expired on its own.
	PurgeExpired(ctx context.Context) (int64, error)
}
