// Package networking assembles the networking hub snapshot of one profile:
// suggested matches, pending requests, connections and meetings.
package networking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/connections"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/meetings"
	"github.com/aura-events/networking/internal/models"
)

// RealtimeSession is the generation-state session used by socket refreshes.
const RealtimeSession = "realtime"

// MatchLoader loads (and on first use generates) matches.
type MatchLoader interface {
	Load(ctx context.Context, sessionID string, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error)
}

// RequestLister lists requests and connections.
type RequestLister interface {
	ListRequests(ctx context.Context, profileID uuid.UUID, box connections.Box) ([]connections.RequestView, error)
	ListConnections(ctx context.Context, profileID uuid.UUID) ([]connections.ConnectionView, error)
}

// MeetingLister lists meetings.
type MeetingLister interface {
	List(ctx context.Context, profileID uuid.UUID) ([]meetings.MeetingView, error)
}

// Directory resolves profile cards.
type Directory interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
}

// Person is the card shown for a counterpart.
type Person struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Title   string    `json:"title"`
	Company string    `json:"company,omitempty"`
}

// Snapshot is everything the networking hub renders for one profile.
type Snapshot struct {
	Matches     []models.Match               `json:"matches"`
	Received    []connections.RequestView    `json:"received"`
	Sent        []connections.RequestView    `json:"sent"`
	Connections []connections.ConnectionView `json:"connections"`
	Meetings    []meetings.MeetingView       `json:"meetings"`
	People      map[uuid.UUID]Person         `json:"people"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// Service builds snapshots.
type Service struct {
	matches   MatchLoader
	requests  RequestLister
	meetings  MeetingLister
	directory Directory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a snapshot service.
func NewService(matches MatchLoader, requests RequestLister, meetings MeetingLister, directory Directory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{matches: matches, requests: requests, meetings: meetings, directory: directory, logger: logger, now: time.Now}
}

// Snapshot loads every section. Any failing section fails the snapshot; a
// missing counterpart profile degrades to a default card.
func (s *Service) Snapshot(ctx context.Context, sessionID string, profileID uuid.UUID, eventID *uuid.UUID) (*Snapshot, error) {
	list, err := s.matches.Load(ctx, sessionID, profileID, eventID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	received, err := s.requests.ListRequests(ctx, profileID, connections.BoxReceived)
	if err != nil {
		return nil, err
	}
	sent, err := s.requests.ListRequests(ctx, profileID, connections.BoxSent)
	if err != nil {
		return nil, err
	}
	conns, err := s.requests.ListConnections(ctx, profileID)
	if err != nil {
		return nil, err
	}
	mtgs, err := s.meetings.List(ctx, profileID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Matches:     matching.Visible(list),
		Received:    received,
		Sent:        sent,
		Connections: conns,
		Meetings:    mtgs,
		GeneratedAt: s.now().UTC(),
	}
	snap.People = s.people(ctx, snap)
	return snap, nil
}

// Push builds the snapshot sent over the socket.
func (s *Service) Push(ctx context.Context, profileID uuid.UUID) (interface{}, error) {
	return s.Snapshot(ctx, RealtimeSession, profileID, nil)
}

func (s *Service) people(ctx context.Context, snap *Snapshot) map[uuid.UUID]Person {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, m := range snap.Matches {
		add(m.MatchedProfileID)
	}
	for _, r := range snap.Received {
		add(r.CounterpartID)
	}
	for _, r := range snap.Sent {
		add(r.CounterpartID)
	}
	for _, c := range snap.Connections {
		add(c.CounterpartID)
	}
	for _, m := range snap.Meetings {
		add(m.CounterpartID)
	}

	out := make(map[uuid.UUID]Person, len(ids))
	if len(ids) == 0 {
		return out
	}
	profiles, err := s.directory.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("load counterpart profiles failed", zap.Error(err))
	}
	byID := make(map[uuid.UUID]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	for _, id := range ids {
		p := byID[id]
		card := Person{ID: id, Name: p.DisplayName(), Title: p.DisplayTitle()}
		if p != nil {
			card.Company = p.Company
		}
		out[id] = card
	}
	return out
}
