package meetings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

const meetingColumns = `id, organizer_id, profile_a_id, profile_b_id, event_id, start_time, end_time,
	meeting_type, location, COALESCE(meeting_url, ''), status, meta, created_at, updated_at`

// Repository handles meeting persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meetings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMeeting(row pgx.Row) (models.Meeting, error) {
	var m models.Meeting
	var typ, status string
	err := row.Scan(&m.ID, &m.OrganizerID, &m.ProfileAID, &m.ProfileBID, &m.EventID, &m.StartTime, &m.EndTime,
		&typ, &m.Location, &m.MeetingURL, &status, &m.Meta, &m.CreatedAt, &m.UpdatedAt)
	m.MeetingType = models.MeetingType(typ)
	m.Status = models.MeetingStatus(status)
	return m, err
}

// Create inserts a meeting. A zero ID is generated by the database.
func (r *Repository) Create(ctx context.Context, m *models.Meeting) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	const q = `INSERT INTO meetings (id, organizer_id, profile_a_id, profile_b_id, event_id, start_time, end_time,
			meeting_type, location, meeting_url, status, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.ID, m.OrganizerID, m.ProfileAID, m.ProfileBID, m.EventID, m.StartTime, m.EndTime,
		string(m.MeetingType), m.Location, m.MeetingURL, string(m.Status), m.Meta).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// Update overwrites the schedule of an existing meeting.
func (r *Repository) Update(ctx context.Context, m *models.Meeting) error {
	const q = `UPDATE meetings SET organizer_id = $2, event_id = $3, start_time = $4, end_time = $5,
			meeting_type = $6, location = $7, meeting_url = NULLIF($8, ''), status = $9, meta = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, m.ID, m.OrganizerID, m.EventID, m.StartTime, m.EndTime,
		string(m.MeetingType), m.Location, m.MeetingURL, string(m.Status), m.Meta).Scan(&m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound
	}
	return err
}

// GetByID returns a meeting by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	m, err := scanMeeting(r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateStatus sets the status of one meeting.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MeetingStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE meetings SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListByProfile returns the meetings profileID is part of, by start time.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Meeting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+meetingColumns+` FROM meetings
		WHERE profile_a_id = $1 OR profile_b_id = $1
		ORDER BY start_time, created_at`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
