package matching_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/models"
)

type memMatches struct {
	mu      sync.Mutex
	rows    []models.Match
	creates int
	updates int
}

func (s *memMatches) ListByProfile(_ context.Context, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.rows {
		if m.ProfileID == profileID && models.SameEvent(m.EventID, eventID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memMatches) GetByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.rows {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *memMatches) CreateMany(_ context.Context, list []models.Match) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	out := make([]models.Match, len(list))
	for i, m := range list {
		m.ID = uuid.New()
		s.rows = append(s.rows, m)
		out[i] = m
	}
	return out, nil
}

func (s *memMatches) UpdateScore(_ context.Context, id uuid.UUID, score int, reason string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Score, s.rows[i].Reason, s.rows[i].Tags = score, reason, tags
			s.updates++
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *memMatches) UpdateStatus(_ context.Context, id uuid.UUID, status models.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Status = status
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *memMatches) ListOwners(_ context.Context) ([]matching.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []matching.Owner
	for _, m := range s.rows {
		dup := false
		for _, o := range out {
			if o.ProfileID == m.ProfileID && models.SameEvent(o.EventID, m.EventID) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, matching.Owner{ProfileID: m.ProfileID, EventID: m.EventID})
		}
	}
	return out, nil
}

func (s *memMatches) add(owner, other uuid.UUID, score int, status models.MatchStatus) models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.Match{ID: uuid.New(), ProfileID: owner, MatchedProfileID: other, Score: score, Status: status}
	s.rows = append(s.rows, m)
	return m
}

type memProfiles struct {
	list    []models.Profile
	getErr  error
	lookups int
}

func (s *memProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.lookups++
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.list {
		if s.list[i].ID == id {
			return &s.list[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *memProfiles) ListCandidates(_ context.Context, excludeID uuid.UUID, limit int) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range s.list {
		if p.ID != excludeID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProfiles) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range s.list {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *memProfiles) add(p models.Profile) models.Profile {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.list = append(s.list, p)
	return p
}

var errBoom = errors.New("boom")

func fintechProfile() models.Profile {
	return models.Profile{
		Industry: "FinTech",
		B2B: models.B2BProfile{
			Interests:     models.Tokens{"AI", "Payments"},
			MeetingTopics: models.Tokens{"Funding"},
		},
	}
}

func disabled(p models.Profile) models.Profile {
	p.B2B.Enabled = models.FlagOf(false)
	return p
}
