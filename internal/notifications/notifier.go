// Package notifications is the notify side channel: every networking state
// transition fires one best-effort notification to the counterpart.
package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/models"
)

// Notifier delivers a notification. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Publisher pushes an event to one profile's realtime channel.
type Publisher interface {
	PublishToProfile(profileID uuid.UUID, event string, payload interface{})
}

// EventNotification is the realtime event name for a new notification.
const EventNotification = "notification"

// Service stores notifications and pushes them to connected clients.
type Service struct {
	store  Store
	pub    Publisher
	logger *zap.Logger
}

// NewService creates a notifier. pub may be nil.
func NewService(store Store, pub Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, pub: pub, logger: logger}
}

// Notify stores n and publishes it to the recipient. Failures are logged and swallowed.
func (s *Service) Notify(ctx context.Context, n models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("notify panicked", zap.Any("panic", r))
		}
	}()
	if n.RecipientID == uuid.Nil || n.RecipientID == n.ActorID {
		return
	}
	if err := s.store.Create(ctx, &n); err != nil {
		s.logger.Warn("create notification failed",
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
		return
	}
	if s.pub != nil {
		s.pub.PublishToProfile(n.RecipientID, EventNotification, n)
	}
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, models.Notification) {}
