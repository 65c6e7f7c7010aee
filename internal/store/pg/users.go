package pg

import (
	"context"
	"database/sql"
	"errors"

	"gatherly.app/internal/social"
)

func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (social.User, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from users where lower(email)=lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return social.User{}, err
	}
	if exists {
		return social.User{}, social.ErrAlreadyExists
	}

	var u social.User
	err = s.db.QueryRowContext(ctx, `
		insert into users(username, email, password_hash)
		values ($1,$2,$3)
		returning id, username, email, password_hash, created_at
	`, username, email, passwordHash).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return social.User{}, err
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (social.User, error) {
	var u social.User
	err := s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, created_at
		from users where lower(email)=lower($1)
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return social.User{}, social.ErrNotFound
	}
	if err != nil {
		return social.User{}, err
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (social.User, error) {
	var u social.User
	err := s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, created_at
		from users where id=$1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return social.User{}, social.ErrNotFound
	}
	if err != nil {
		return social.User{}, err
	}
	return u, nil
}
