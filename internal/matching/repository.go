package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

const matchColumns = `id, profile_id, matched_profile_id, event_id, score, reason, tags, status, created_at, updated_at`

// Repository handles match persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a match repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMatch(row pgx.Row) (models.Match, error) {
	var m models.Match
	var status string
	err := row.Scan(&m.ID, &m.ProfileID, &m.MatchedProfileID, &m.EventID, &m.Score, &m.Reason, &m.Tags, &status, &m.CreatedAt, &m.UpdatedAt)
	m.Status = models.MatchStatus(status)
	return m, err
}

// ListByProfile returns the matches owned by profileID for one event key (nil = no event).
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE profile_id = $1 AND event_id IS NOT DISTINCT FROM $2
		ORDER BY score DESC, created_at`, profileID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetByID returns a match by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMany inserts matches in one transaction and returns them with ids.
func (r *Repository) CreateMany(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO matches (id, profile_id, matched_profile_id, event_id, score, reason, tags, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	out := make([]models.Match, len(matches))
	copy(out, matches)
	for i := range out {
		m := &out[i]
		if m.Tags == nil {
			m.Tags = []string{}
		}
		if err := tx.QueryRow(ctx, q, m.ProfileID, m.MatchedProfileID, m.EventID, m.Score, m.Reason, m.Tags, string(m.Status)).
			Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("insert match: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// UpdateScore persists a refreshed score, reason and tags.
func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score int, reason string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, `UPDATE matches SET score = $1, reason = $2, tags = $3, updated_at = NOW() WHERE id = $4`,
		score, reason, tags, id)
	return err
}

// UpdateStatus sets the status of one match.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FindByPair returns the match owned by profileID for matchedID under one event key.
func (r *Repository) FindByPair(ctx context.Context, profileID, matchedID uuid.UUID, eventID *uuid.UUID) (*models.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE profile_id = $1 AND matched_profile_id = $2 AND event_id IS NOT DISTINCT FROM $3
		ORDER BY created_at LIMIT 1`, profileID, matchedID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetPairStatus updates every match between x and y, in both directions, for one event key.
func (r *Repository) SetPairStatus(ctx context.Context, x, y uuid.UUID, eventID *uuid.UUID, status models.MatchStatus) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE matches SET status = $1, updated_at = NOW()
		WHERE ((profile_id = $2 AND matched_profile_id = $3) OR (profile_id = $3 AND matched_profile_id = $2))
		  AND event_id IS NOT DISTINCT FROM $4`, string(status), x, y, eventID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListOwners returns every distinct (profile, event key) that owns matches.
func (r *Repository) ListOwners(ctx context.Context) ([]Owner, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT profile_id, event_id FROM matches`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Owner
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ProfileID, &o.EventID); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
