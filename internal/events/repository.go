// Package events reads the external event and session catalog used for
// in-person meeting slots.
package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

const (
	eventColumns   = `id, COALESCE(title, ''), COALESCE(format, ''), COALESCE(location, ''), starts_at, ends_at, created_at`
	sessionColumns = `id, event_id, COALESCE(title, ''), start_time, end_time, COALESCE(location, ''), COALESCE(capacity, 0), COALESCE(attendees, 0)`
)

// Repository is a read-only view over events and event_sessions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Format, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt)
	return e, err
}

func scanSession(row pgx.Row) (models.EventSession, error) {
	var s models.EventSession
	err := row.Scan(&s.ID, &s.EventID, &s.Title, &s.StartTime, &s.EndTime, &s.Location, &s.Capacity, &s.Attendees)
	return s, err
}

// ListEvents returns events in the given formats ordered by start. No formats means all.
func (r *Repository) ListEvents(ctx context.Context, formats ...string) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	var args []interface{}
	if len(formats) > 0 {
		q += ` WHERE LOWER(format) = ANY($1)`
		args = append(args, formats)
	}
	q += ` ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetEvent returns one event.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListSessions returns the sessions of one event ordered by start time.
func (r *Repository) ListSessions(ctx context.Context, eventID uuid.UUID) ([]models.EventSession, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sessionColumns+` FROM event_sessions
		WHERE event_id = $1 ORDER BY start_time NULLS LAST, title`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetSession returns one session.
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.EventSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM event_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByIDs returns the events with the given ids, in no particular order.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
