package meetings_test

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

type memStore struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]models.Meeting
	writes int
}

func newMemStore() *memStore { return &memStore{rows: map[uuid.UUID]models.Meeting{}} }

func (s *memStore) Create(_ context.Context, m *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.rows[m.ID] = *m
	return nil
}

func (s *memStore) Update(_ context.Context, m *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[m.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.writes++
	s.rows[m.ID] = *m
	return nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &m, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.MeetingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	s.writes++
	m.Status = status
	s.rows[id] = m
	return nil
}

func (s *memStore) ListByProfile(_ context.Context, profileID uuid.UUID) ([]models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Meeting
	for _, m := range s.rows {
		if m.HasProfile(profileID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type memCatalog struct {
	events   map[uuid.UUID]models.Event
	sessions map[uuid.UUID]models.EventSession
}

func newMemCatalog() *memCatalog {
	return &memCatalog{events: map[uuid.UUID]models.Event{}, sessions: map[uuid.UUID]models.EventSession{}}
}

func (c *memCatalog) ListEvents(_ context.Context, _ ...string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range c.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (c *memCatalog) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := c.events[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &e, nil
}

func (c *memCatalog) ListSessions(_ context.Context, eventID uuid.UUID) ([]models.EventSession, error) {
	var out []models.EventSession
	for _, s := range c.sessions {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *memCatalog) GetSession(_ context.Context, id uuid.UUID) (*models.EventSession, error) {
	s, ok := c.sessions[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &s, nil
}

type fakeRooms struct{}

func (fakeRooms) AppID() uint32 { return 7 }

func (fakeRooms) RoomURL(id uuid.UUID) string { return "https://call.test/" + id.String() }

func (fakeRooms) JoinToken(meetingID, profileID uuid.UUID) (string, error) {
	return "tok-" + profileID.String()[:8], nil
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

func (r *recordingNotifier) last() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}
