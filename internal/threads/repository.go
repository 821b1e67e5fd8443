package threads

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

// Repository handles message_threads and thread_participants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a threads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindShared returns the oldest thread x and y both take part in.
func (r *Repository) FindShared(ctx context.Context, x, y uuid.UUID, eventID *uuid.UUID) (*models.Thread, error) {
	const q = `SELECT t.id, t.event_id, t.created_at,
			ARRAY(SELECT p.profile_id FROM thread_participants p WHERE p.thread_id = t.id ORDER BY p.joined_at)
		FROM message_threads t
		WHERE t.event_id IS NOT DISTINCT FROM $3
		  AND EXISTS (SELECT 1 FROM thread_participants a WHERE a.thread_id = t.id AND a.profile_id = $1)
		  AND EXISTS (SELECT 1 FROM thread_participants b WHERE b.thread_id = t.id AND b.profile_id = $2)
		ORDER BY t.created_at
		LIMIT 1`
	var t models.Thread
	err := r.pool.QueryRow(ctx, q, x, y, eventID).Scan(&t.ID, &t.EventID, &t.CreatedAt, &t.ParticipantIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a thread and its participants in one transaction.
func (r *Repository) Create(ctx context.Context, t *models.Thread) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO message_threads (id, event_id) VALUES (gen_random_uuid(), $1)
		RETURNING id, created_at`, t.EventID).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert thread: %w", err)
	}
	for _, pid := range t.ParticipantIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO thread_participants (thread_id, profile_id) VALUES ($1, $2)`, t.ID, pid); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return tx.Commit(ctx)
}
