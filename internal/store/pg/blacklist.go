package pg

import (
	"context"
	"time"

	"gatherly.app/internal/auth"
)

// Revoked tokens are stored by SHA-256 digest, never as raw JWTs.

func (s *Store) Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		insert into token_blacklist(token_digest, expires_at)
		values ($1,$2)
		on conflict (token_digest) do nothing
	`, auth.HashToken(rawToken), expiresAt.UTC())
	return err
}

func (s *Store) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `
		select exists(
			select 1 from token_blacklist
			where token_digest=$1 and expires_at > now()
		)
	`, auth.HashToken(rawToken)).Scan(&revoked)
	return revoked, err
}

func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		delete from token_blacklist where expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
