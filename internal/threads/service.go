// Package threads loads or creates the message thread shared by two profiles.
package threads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

// Store persists threads.
type Store interface {
	// FindShared returns the oldest thread both profiles take part in under one event key.
	FindShared(ctx context.Context, x, y uuid.UUID, eventID *uuid.UUID) (*models.Thread, error)
	Create(ctx context.Context, t *models.Thread) error
}

// Service opens threads between profiles.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a threads service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Open returns the thread shared by actorID and counterpartID, creating it when missing.
// Two concurrent callers can both miss and each create a thread; no dedup is done.
func (s *Service) Open(ctx context.Context, actorID, counterpartID uuid.UUID, eventID *uuid.UUID) (*models.Thread, bool, error) {
	if counterpartID == uuid.Nil {
		return nil, false, apperr.Invalid("counterpart_id is required")
	}
	if counterpartID == actorID {
		return nil, false, apperr.Invalid("cannot open a thread with yourself")
	}
	t, err := s.store.FindShared(ctx, actorID, counterpartID, eventID)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, fmt.Errorf("find thread: %w", err)
	}
	t = &models.Thread{EventID: eventID, ParticipantIDs: []uuid.UUID{actorID, counterpartID}}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, false, fmt.Errorf("create thread: %w", err)
	}
	s.logger.Debug("thread created", zap.String("thread_id", t.ID.String()))
	return t, true, nil
}
