package connections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

const requestColumns = `id, sender_id, recipient_id, event_id, message, status, created_at, updated_at`

// Repository handles connection_requests and connections persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a connections repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Requests returns the RequestStore view of r.
func (r *Repository) Requests() *RequestRepository { return &RequestRepository{pool: r.pool} }

// Connections returns the ConnectionStore view of r.
func (r *Repository) Connections() *ConnectionRepository { return &ConnectionRepository{pool: r.pool} }

// RequestRepository handles the connection_requests table.
type RequestRepository struct {
	pool *pgxpool.Pool
}

func scanRequest(row pgx.Row) (models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	var status string
	err := row.Scan(&req.ID, &req.SenderID, &req.RecipientID, &req.EventID, &req.Message, &status, &req.CreatedAt, &req.UpdatedAt)
	req.Status = models.RequestStatus(status)
	return req, err
}

// Create inserts a request.
func (r *RequestRepository) Create(ctx context.Context, req *models.ConnectionRequest) error {
	const q = `INSERT INTO connection_requests (id, sender_id, recipient_id, event_id, message, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, req.SenderID, req.RecipientID, req.EventID, req.Message, string(req.Status)).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

// GetByID returns a request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM connection_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus sets the status of one request.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE connection_requests SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListForProfile returns requests received, sent or both by profileID, newest first.
func (r *RequestRepository) ListForProfile(ctx context.Context, profileID uuid.UUID, box Box) ([]models.ConnectionRequest, error) {
	var where string
	switch box {
	case BoxSent:
		where = `sender_id = $1`
	case BoxAll:
		where = `(sender_id = $1 OR recipient_id = $1)`
	default:
		where = `recipient_id = $1`
	}
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM connection_requests WHERE `+where+` ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ConnectionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// ConnectionRepository handles the connections table.
type ConnectionRepository struct {
	pool *pgxpool.Pool
}

// Upsert inserts the canonical pair. On conflict the existing row is kept and
// returned; a missing event id is filled in.
func (r *ConnectionRepository) Upsert(ctx context.Context, c *models.Connection) error {
	c.ProfileAID, c.ProfileBID = models.CanonicalPair(c.ProfileAID, c.ProfileBID)
	const q = `INSERT INTO connections (id, profile_a_id, profile_b_id, event_id)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (profile_a_id, profile_b_id)
		DO UPDATE SET event_id = COALESCE(connections.event_id, EXCLUDED.event_id)
		RETURNING id, event_id, created_at`
	return r.pool.QueryRow(ctx, q, c.ProfileAID, c.ProfileBID, c.EventID).Scan(&c.ID, &c.EventID, &c.CreatedAt)
}

// GetByID returns a connection by ID.
func (r *ConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	var c models.Connection
	err := r.pool.QueryRow(ctx, `SELECT id, profile_a_id, profile_b_id, event_id, created_at FROM connections WHERE id = $1`, id).
		Scan(&c.ID, &c.ProfileAID, &c.ProfileBID, &c.EventID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a connection.
func (r *ConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListByProfile returns the connections profileID is part of, newest first.
func (r *ConnectionRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Connection, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, profile_a_id, profile_b_id, event_id, created_at FROM connections
		WHERE profile_a_id = $1 OR profile_b_id = $1 ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Connection
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.ID, &c.ProfileAID, &c.ProfileBID, &c.EventID, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
