package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gatherly.app/internal/social"
)

// with_who persists as a comma-joined text column; splitWithWho turns
// it back into the list clients see.
func splitWithWho(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (s *Store) CreateEvent(ctx context.Context, e social.Event) (social.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return social.Event{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		insert into events(title, description, date, location, owner_id, with_who)
		values ($1,$2,$3,$4,$5,$6)
		returning id, created_at
	`, e.Title, e.Description, e.Date, e.Location, e.OwnerID, strings.Join(e.WithWho, ",")).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return social.Event{}, err
	}

	// The owner attends their own event from the start.
	if _, err := tx.ExecContext(ctx, `
		insert into event_attendees(event_id, user_id, status)
		values ($1,$2,$3)
	`, e.ID, e.OwnerID, social.StatusAttending); err != nil {
		return social.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return social.Event{}, err
	}
	return e, nil
}

func (s *Store) EventsByOwner(ctx context.Context, ownerID int64) ([]social.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, title, coalesce(description,''), date, location, owner_id, coalesce(with_who,''), created_at
		from events
		where owner_id=$1
		order by date asc
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []social.Event
	for rows.Next() {
		var e social.Event
		var withWho string
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.OwnerID, &withWho, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.WithWho = splitWithWho(withWho)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) EventByID(ctx context.Context, eventID, ownerID int64) (social.Event, error) {
	var e social.Event
	var withWho string
	err := s.db.QueryRowContext(ctx, `
		select id, title, coalesce(description,''), date, location, owner_id, coalesce(with_who,''), created_at
		from events
		where id=$1 and owner_id=$2
	`, eventID, ownerID).Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.OwnerID, &withWho, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return social.Event{}, social.ErrNotFound
	}
	if err != nil {
		return social.Event{}, err
	}
	e.WithWho = splitWithWho(withWho)
	return e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, eventID, ownerID int64, upd social.EventUpdate) (social.Event, error) {
	var e social.Event
	var withWho string
	err := s.db.QueryRowContext(ctx, `
		update events
		set title=$3, description=$4, date=$5, location=$6
		where id=$1 and owner_id=$2
		returning id, title, coalesce(description,''), date, location, owner_id, coalesce(with_who,''), created_at
	`, eventID, ownerID, upd.Title, upd.Description, upd.Date, upd.Location).
		Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.OwnerID, &withWho, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return social.Event{}, social.ErrNotFound
	}
	if err != nil {
		return social.Event{}, err
	}
	e.WithWho = splitWithWho(withWho)
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, eventID, ownerID int64) error {
	res, err := s.db.ExecContext(ctx, `
		delete from events where id=$1 and owner_id=$2
	`, eventID, ownerID)
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

func (s *Store) ShareEvent(ctx context.Context, eventID, withUserID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from events where id=$1)
	`, eventID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return social.ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		insert into event_attendees(event_id, user_id, status)
		values ($1,$2,$3)
		on conflict (event_id, user_id) do nothing
	`, eventID, withUserID, social.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return social.ErrAlreadyShared
	}
	return nil
}

func (s *Store) RSVP(ctx context.Context, eventID, userID int64, status string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		select exists(select 1 from events where id=$1)
	`, eventID).Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return "", social.ErrNotFound
	}

	var previous string
	err = tx.QueryRowContext(ctx, `
		select status from event_attendees
		where event_id=$1 and user_id=$2
		for update
	`, eventID, userID).Scan(&previous)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		previous = ""
	case err != nil:
		return "", err
	}
	if previous != "" && previous != social.StatusPending {
		return previous, social.ErrAlreadyRSVPed
	}

	if _, err := tx.ExecContext(ctx, `
		insert into event_attendees(event_id, user_id, status)
		values ($1,$2,$3)
		on conflict (event_id, user_id) do update set status = excluded.status
	`, eventID, userID, status); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return previous, nil
}

func (s *Store) PendingInvites(ctx context.Context, userID int64) ([]social.EventInvite, error) {
	rows, err := s.db.QueryContext(ctx, `
		select e.id, e.title, coalesce(e.description,''), e.date, e.location, e.owner_id, u.email
		from event_attendees a
		join events e on e.id = a.event_id
		join users u on u.id = e.owner_id
		where a.user_id=$1 and a.status=$2
		order by e.date asc
	`, userID, social.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []social.EventInvite
	for rows.Next() {
		var inv social.EventInvite
		if err := rows.Scan(&inv.EventID, &inv.Title, &inv.Description, &inv.Date, &inv.Location, &inv.OwnerID, &inv.OwnerEmail); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
