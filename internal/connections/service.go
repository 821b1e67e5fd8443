// Package connections implements the request/connection lifecycle: connect,
// accept, decline, withdraw, cancel and remove.
package connections

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/models"
	"github.com/aura-events/networking/internal/notifications"
)

// RequestStore persists connection requests.
type RequestStore interface {
	Create(ctx context.Context, r *models.ConnectionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ConnectionRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	ListForProfile(ctx context.Context, profileID uuid.UUID, box Box) ([]models.ConnectionRequest, error)
}

// ConnectionStore persists accepted connections.
type ConnectionStore interface {
	// Upsert inserts c keyed by its canonical pair. An existing row for the
	// pair is returned unchanged.
	Upsert(ctx context.Context, c *models.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Connection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Connection, error)
}

// MatchStore is the slice of match persistence the lifecycle touches.
type MatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	FindByPair(ctx context.Context, profileID, matchedID uuid.UUID, eventID *uuid.UUID) (*models.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	SetPairStatus(ctx context.Context, x, y uuid.UUID, eventID *uuid.UUID, status models.MatchStatus) (int64, error)
}

// ProfileLookup resolves display names for notification copy.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

const actionURL = "/networking"

// Service runs the request/connection state machine.
type Service struct {
	requests    RequestStore
	connections ConnectionStore
	matches     MatchStore
	profiles    ProfileLookup
	notifier    notifications.Notifier
	logger      *zap.Logger
}

// NewService creates a connections service. profiles may be nil.
func NewService(requests RequestStore, conns ConnectionStore, matches MatchStore, profiles ProfileLookup, notifier notifications.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Service{
		requests:    requests,
		connections: conns,
		matches:     matches,
		profiles:    profiles,
		notifier:    notifier,
		logger:      logger,
	}
}

// ConnectInput is the payload of a connect action.
type ConnectInput struct {
	RecipientID uuid.UUID
	EventID     *uuid.UUID
	MatchID     *uuid.UUID
	Message     string
}

// Connect creates a pending request from senderID and flips the backing match to pending.
func (s *Service) Connect(ctx context.Context, senderID uuid.UUID, in ConnectInput) (*models.ConnectionRequest, error) {
	if in.RecipientID == uuid.Nil {
		return nil, apperr.Invalid("recipient_id is required")
	}
	if in.RecipientID == senderID {
		return nil, apperr.Invalid("cannot connect with yourself")
	}

	match, err := s.backingMatch(ctx, senderID, in)
	if err != nil {
		return nil, err
	}
	if match != nil && in.EventID == nil {
		in.EventID = match.EventID
	}

	req := &models.ConnectionRequest{
		SenderID:    senderID,
		RecipientID: in.RecipientID,
		EventID:     in.EventID,
		Message:     in.Message,
		Status:      models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if match != nil && matching.IsTransitionAllowed(match.Status, models.MatchStatusPending) {
		if err := s.matches.UpdateStatus(ctx, match.ID, models.MatchStatusPending); err != nil {
			return nil, fmt.Errorf("mark match pending: %w", err)
		}
	}

	s.notifier.Notify(ctx, models.Notification{
		RecipientID: in.RecipientID,
		ActorID:     senderID,
		Title:       "New connection request",
		Body:        s.displayName(ctx, senderID) + " wants to connect with you.",
		Type:        models.NotificationConnectionRequest,
		ActionURL:   actionURL,
	})
	return req, nil
}

// backingMatch returns the sender's match for the recipient, or nil when there is none.
func (s *Service) backingMatch(ctx context.Context, senderID uuid.UUID, in ConnectInput) (*models.Match, error) {
	if in.MatchID != nil {
		m, err := s.matches.GetByID(ctx, *in.MatchID)
		if err != nil {
			return nil, fmt.Errorf("get match: %w", err)
		}
		if m.ProfileID != senderID || m.MatchedProfileID != in.RecipientID {
			return nil, apperr.ErrForbidden
		}
		return m, nil
	}
	m, err := s.matches.FindByPair(ctx, senderID, in.RecipientID, in.EventID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

// Accept accepts a pending received request and upserts the canonical connection.
func (s *Service) Accept(ctx context.Context, actorID, requestID uuid.UUID) (*models.Connection, error) {
	req, err := s.transition(ctx, actorID, requestID, models.RequestStatusAccepted)
	if err != nil {
		return nil, err
	}
	a, b := models.CanonicalPair(req.SenderID, req.RecipientID)
	conn := &models.Connection{ProfileAID: a, ProfileBID: b, EventID: req.EventID}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("upsert connection: %w", err)
	}

	s.notifier.Notify(ctx, models.Notification{
		RecipientID: req.SenderID,
		ActorID:     actorID,
		Title:       "Connection accepted",
		Body:        s.displayName(ctx, actorID) + " accepted your connection request.",
		Type:        models.NotificationConnectionAccepted,
		ActionURL:   actionURL,
	})
	return conn, nil
}

// Decline declines a pending received request.
func (s *Service) Decline(ctx context.Context, actorID, requestID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := s.transition(ctx, actorID, requestID, models.RequestStatusDeclined)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, models.Notification{
		RecipientID: req.SenderID,
		ActorID:     actorID,
		Title:       "Connection declined",
		Body:        s.displayName(ctx, actorID) + " declined your connection request.",
		Type:        models.NotificationConnectionDeclined,
		ActionURL:   actionURL,
	})
	return req, nil
}

// Withdraw withdraws a pending sent request and reopens the pair's matches.
func (s *Service) Withdraw(ctx context.Context, actorID, requestID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := s.transition(ctx, actorID, requestID, models.RequestStatusWithdrawn)
	if err != nil {
		return nil, err
	}
	n, err := s.matches.SetPairStatus(ctx, req.SenderID, req.RecipientID, req.EventID, models.MatchStatusNew)
	if err != nil {
		return nil, fmt.Errorf("reopen matches: %w", err)
	}
	s.logger.Debug("matches reopened",
		zap.String("request_id", req.ID.String()),
		zap.Int64("rows", n),
	)
	s.notifier.Notify(ctx, models.Notification{
		RecipientID: req.RecipientID,
		ActorID:     actorID,
		Title:       "Connection request withdrawn",
		Body:        s.displayName(ctx, actorID) + " withdrew their connection request.",
		Type:        models.NotificationRequestWithdrawn,
		ActionURL:   actionURL,
	})
	return req, nil
}

// Cancel cancels a pending request. Either party may cancel; matches stay as they are.
func (s *Service) Cancel(ctx context.Context, actorID, requestID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := s.transition(ctx, actorID, requestID, models.RequestStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, models.Notification{
		RecipientID: req.Counterpart(actorID),
		ActorID:     actorID,
		Title:       "Connection request cancelled",
		Body:        s.displayName(ctx, actorID) + " cancelled a pending connection request.",
		Type:        models.NotificationRequestCancelled,
		ActionURL:   actionURL,
	})
	return req, nil
}

// transition loads the request, checks the actor may move it to `to` and stores the new status.
func (s *Service) transition(ctx context.Context, actorID, requestID uuid.UUID, to models.RequestStatus) (*models.ConnectionRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if !mayAct(req, actorID, to) {
		return nil, apperr.ErrForbidden
	}
	if IsTerminal(req.Status) {
		return nil, fmt.Errorf("request %s is already %s: %w", req.ID, req.Status, apperr.ErrInvalidTransition)
	}
	if !IsTransitionAllowed(req.Status, to) {
		return nil, fmt.Errorf("request %s: %s -> %s: %w", req.ID, req.Status, to, apperr.ErrInvalidTransition)
	}
	if err := s.requests.UpdateStatus(ctx, req.ID, to); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	req.Status = to
	return req, nil
}

func mayAct(req *models.ConnectionRequest, actorID uuid.UUID, to models.RequestStatus) bool {
	switch to {
	case models.RequestStatusAccepted, models.RequestStatusDeclined:
		return req.RecipientID == actorID
	case models.RequestStatusWithdrawn:
		return req.SenderID == actorID
	case models.RequestStatusCancelled:
		return req.SenderID == actorID || req.RecipientID == actorID
	}
	return false
}

// RemoveConnection deletes a connection the actor is part of.
func (s *Service) RemoveConnection(ctx context.Context, actorID, connectionID uuid.UUID) error {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	if !conn.HasProfile(actorID) {
		return apperr.ErrForbidden
	}
	if err := s.connections.Delete(ctx, conn.ID); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	s.notifier.Notify(ctx, models.Notification{
		RecipientID: conn.Counterpart(actorID),
		ActorID:     actorID,
		Title:       "Connection removed",
		Body:        s.displayName(ctx, actorID) + " removed you from their connections.",
		Type:        models.NotificationConnectionRemoved,
		ActionURL:   actionURL,
	})
	return nil
}

// RequestView is a request with its reconciled display status.
type RequestView struct {
	models.ConnectionRequest
	Direction     Box                  `json:"direction"`
	CounterpartID uuid.UUID            `json:"counterpart_id"`
	DisplayStatus models.RequestStatus `json:"display_status"`
}

// ListRequests returns the actor's requests. The received and sent boxes hold
// only requests whose display status is still pending. A request whose
// counterpart is already connected displays as accepted; the stored row is
// left as it is.
func (s *Service) ListRequests(ctx context.Context, profileID uuid.UUID, box Box) ([]RequestView, error) {
	list, err := s.requests.ListForProfile(ctx, profileID, box)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	connected, err := s.connectedSet(ctx, profileID)
	if err != nil {
		return nil, err
	}

	out := make([]RequestView, 0, len(list))
	for _, r := range list {
		v := RequestView{
			ConnectionRequest: r,
			Direction:         BoxReceived,
			CounterpartID:     r.Counterpart(profileID),
			DisplayStatus:     DisplayStatus(r, connected),
		}
		if r.SenderID == profileID {
			v.Direction = BoxSent
		}
		if box != BoxAll && v.DisplayStatus != models.RequestStatusPending {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// FilterStatus keeps the views whose display status is st.
func FilterStatus(list []RequestView, st models.RequestStatus) []RequestView {
	out := make([]RequestView, 0, len(list))
	for _, v := range list {
		if v.DisplayStatus == st {
			out = append(out, v)
		}
	}
	return out
}

// DisplayStatus returns accepted when the counterpart is in connected, else the stored status.
func DisplayStatus(r models.ConnectionRequest, connected map[uuid.UUID]bool) models.RequestStatus {
	if connected[r.SenderID] || connected[r.RecipientID] {
		return models.RequestStatusAccepted
	}
	return r.Status
}

func (s *Service) connectedSet(ctx context.Context, profileID uuid.UUID) (map[uuid.UUID]bool, error) {
	conns, err := s.connections.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	set := make(map[uuid.UUID]bool, len(conns))
	for _, c := range conns {
		set[c.Counterpart(profileID)] = true
	}
	return set, nil
}

// ConnectionView is a connection with the counterpart resolved for the viewer.
type ConnectionView struct {
	models.Connection
	CounterpartID uuid.UUID `json:"counterpart_id"`
}

// ListConnections returns the profile's connections, newest first.
func (s *Service) ListConnections(ctx context.Context, profileID uuid.UUID) ([]ConnectionView, error) {
	conns, err := s.connections.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	out := make([]ConnectionView, 0, len(conns))
	for _, c := range conns {
		out = append(out, ConnectionView{Connection: c, CounterpartID: c.Counterpart(profileID)})
	}
	return out, nil
}

func (s *Service) displayName(ctx context.Context, id uuid.UUID) string {
	if s.profiles == nil {
		return (*models.Profile)(nil).DisplayName()
	}
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return (*models.Profile)(nil).DisplayName()
	}
	return p.DisplayName()
}
