package connections_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/connections"
	"github.com/aura-events/networking/internal/models"
)

type memRequests struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.ConnectionRequest
	seq  int
}

func newMemRequests() *memRequests {
	return &memRequests{rows: map[uuid.UUID]*models.ConnectionRequest{}}
}

func (m *memRequests) Create(_ context.Context, r *models.ConnectionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = uuid.New()
	r.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memRequests) GetByID(_ context.Context, id uuid.UUID) (*models.ConnectionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequests) UpdateStatus(_ context.Context, id uuid.UUID, status models.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	r.Status = status
	return nil
}

func (m *memRequests) ListForProfile(_ context.Context, profileID uuid.UUID, box connections.Box) ([]models.ConnectionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ConnectionRequest
	for _, r := range m.rows {
		switch {
		case box == connections.BoxSent && r.SenderID == profileID,
			box == connections.BoxReceived && r.RecipientID == profileID,
			box == connections.BoxAll && (r.SenderID == profileID || r.RecipientID == profileID):
			out = append(out, *r)
		}
	}
	return out, nil
}

type memConnections struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Connection
}

func newMemConnections() *memConnections {
	return &memConnections{rows: map[uuid.UUID]*models.Connection{}}
}

func (m *memConnections) Upsert(_ context.Context, c *models.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ProfileAID == c.ProfileAID && row.ProfileBID == c.ProfileBID {
			*c = *row
			return nil
		}
	}
	c.ID = uuid.New()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memConnections) GetByID(_ context.Context, id uuid.UUID) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memConnections) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memConnections) ListByProfile(_ context.Context, profileID uuid.UUID) ([]models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Connection
	for _, c := range m.rows {
		if c.HasProfile(profileID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memMatches struct {
	mu   sync.Mutex
	rows []*models.Match
}

func (m *memMatches) add(owner, other uuid.UUID, eventID *uuid.UUID, status models.MatchStatus) *models.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := &models.Match{ID: uuid.New(), ProfileID: owner, MatchedProfileID: other, EventID: eventID, Score: 50, Status: status}
	m.rows = append(m.rows, row)
	return row
}

func (m *memMatches) status(id uuid.UUID) models.MatchStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r.Status
		}
	}
	return ""
}

func (m *memMatches) GetByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memMatches) FindByPair(_ context.Context, profileID, matchedID uuid.UUID, eventID *uuid.UUID) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ProfileID == profileID && r.MatchedProfileID == matchedID && models.SameEvent(r.EventID, eventID) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memMatches) UpdateStatus(_ context.Context, id uuid.UUID, status models.MatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.Status = status
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *memMatches) SetPairStatus(_ context.Context, x, y uuid.UUID, eventID *uuid.UUID, status models.MatchStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		pair := (r.ProfileID == x && r.MatchedProfileID == y) || (r.ProfileID == y && r.MatchedProfileID == x)
		if pair && models.SameEvent(r.EventID, eventID) {
			r.Status = status
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) types() []models.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationType, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Type
	}
	return out
}
