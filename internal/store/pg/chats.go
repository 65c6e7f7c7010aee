package pg

import (
	"context"
	"database/sql"
	"errors"

	"gatherly.app/internal/social"
)

func (s *Store) CreateChat(ctx context.Context, name string, isGroup bool, createdBy int64) (social.Chat, error) {
	var c social.Chat
	err := s.db.QueryRowContext(ctx, `
		insert into chats(name, is_group_chat, created_by)
		values ($1,$2,$3)
		returning id, name, is_group_chat, created_by, created_at
	`, name, isGroup, createdBy).Scan(&c.ID, &c.Name, &c.IsGroupChat, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		return social.Chat{}, err
	}
	return c, nil
}

func (s *Store) ChatExists(ctx context.Context, chatID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from chats where id=$1)
	`, chatID).Scan(&exists)
	return exists, err
}

func (s *Store) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var member bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from chat_members where chat_id=$1 and user_id=$2)
	`, chatID, userID).Scan(&member)
	return member, err
}

func (s *Store) AddChatMembers(ctx context.Context, chatID int64, userIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range userIDs {
		if _, err := tx.ExecContext(ctx, `
			insert into chat_members(chat_id, user_id)
			values ($1,$2)
			on conflict (chat_id, user_id) do nothing
		`, chatID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) RemoveChatMember(ctx context.Context, chatID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		delete from chat_members where chat_id=$1 and user_id=$2
	`, chatID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return social.ErrNotMember
	}
	return nil
}

func (s *Store) ChatsByUser(ctx context.Context, userID int64) ([]social.Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		select c.id, c.name, c.is_group_chat, c.created_by, c.created_at
		from chats c
		join chat_members m on m.chat_id = c.id
		where m.user_id=$1
		order by c.created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []social.Chat
	for rows.Next() {
		var c social.Chat
		if err := rows.Scan(&c.ID, &c.Name, &c.IsGroupChat, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddMessage(ctx context.Context, chatID, userID int64, content string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into messages(chat_id, user_id, content)
		values ($1,$2,$3)
		returning id
	`, chatID, userID, content).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, social.ErrNotFound
	}
	return id, err
}

func (s *Store) RecentMessages(ctx context.Context, chatID int64, limit int) ([]social.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		select m.id, m.chat_id, m.user_id, u.username, m.content, m.created_at
		from messages m
		join users u on u.id = m.user_id
		where m.chat_id=$1
		order by m.created_at desc
		limit $2
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []social.Message
	for rows.Next() {
		var m social.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
