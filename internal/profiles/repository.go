// Package profiles reads user/business profiles from the profiles table.
package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

const profileColumns = `id, COALESCE(full_name,''), COALESCE(industry,''), COALESCE(job_title,''), COALESCE(department,''),
	COALESCE(company_name,''), COALESCE(location,''), COALESCE(years_experience,''), COALESCE(company_size,''),
	b2b_profile, created_at, updated_at`

// Repository handles profile reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profiles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	var blob []byte
	err := row.Scan(&p.ID, &p.FullName, &p.Industry, &p.JobTitle, &p.Department,
		&p.Company, &p.Location, &p.YearsExperience, &p.CompanySize,
		&blob, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.B2B = models.DecodeB2BProfile(blob)
	return p, nil
}

// GetByID returns a profile by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCandidates returns up to limit profiles other than excludeID, most recently updated first.
func (r *Repository) ListCandidates(ctx context.Context, excludeID uuid.UUID, limit int) ([]models.Profile, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id <> $1 ORDER BY updated_at DESC LIMIT $2`, excludeID, limit)
}

// ListByIDs returns the profiles with the given ids. Missing ids are skipped.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
}

func (r *Repository) list(ctx context.Context, q string, args ...interface{}) ([]models.Profile, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
