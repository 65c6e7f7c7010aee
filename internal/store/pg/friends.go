package pg

import (
	"context"

	"gatherly.app/internal/social"
)

func (s *Store) AddFriend(ctx context.Context, userID, friendID int64) error {
	res, err := s.db.ExecContext(ctx, `
		insert into friends(user_id, friend_id)
		values ($1,$2)
		on conflict (user_id, friend_id) do nothing
	`, userID, friendID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return social.ErrAlreadyFriends
	}
	return nil
}

func (s *Store) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	res, err := s.db.ExecContext(ctx, `
		delete from friends where user_id=$1 and friend_id=$2
	`, userID, friendID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return social.ErrNotFound
	}
	return nil
}

func (s *Store) AreFriends(ctx context.Context, userID int64, friendIDs []int64) (bool, error) {
	// One query per id keeps this on plain database/sql placeholders.
	for _, id := range friendIDs {
		var ok bool
		err := s.db.QueryRowContext(ctx, `
			select exists(select 1 from friends where user_id=$1 and friend_id=$2)
		`, userID, id).Scan(&ok)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *Store) Friends(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		select friend_id from friends where user_id=$1 order by friend_id asc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
