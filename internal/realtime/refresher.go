package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSnapshot is the realtime event carrying a refreshed networking snapshot.
const EventSnapshot = "networking_snapshot"

// SnapshotFunc builds the payload pushed to a profile on each tick.
type SnapshotFunc func(ctx context.Context, profileID uuid.UUID) (interface{}, error)

// Sender delivers an event to the local sockets of a profile.
type Sender interface {
	SendToProfile(profileID uuid.UUID, event string, payload interface{})
}

// Refresher pushes a fresh snapshot to one profile at a fixed interval until stopped.
type Refresher struct {
	profileID uuid.UUID
	snapshot  SnapshotFunc
	sender    Sender
	logger    *zap.Logger
	interval  time.Duration
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	nudgeCh   chan struct{}
}

// NewRefresher creates a refresher for one profile. interval <= 0 means 10s.
func NewRefresher(profileID uuid.UUID, snapshot SnapshotFunc, sender Sender, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		profileID: profileID,
		snapshot:  snapshot,
		sender:    sender,
		logger:    logger,
		interval:  interval,
		nudgeCh:   make(chan struct{}, 1),
	}
}

// Start pushes a snapshot immediately and then on every tick. Call Stop to release resources.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
	r.logger.Debug("refresher started", zap.String("profile_id", r.profileID.String()), zap.Duration("interval", r.interval))
}

// Stop stops the loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	<-r.done
	r.logger.Debug("refresher stopped", zap.String("profile_id", r.profileID.String()))
}

// Running reports whether the loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Nudge requests a push before the next tick.
func (r *Refresher) Nudge() {
	select {
	case r.nudgeCh <- struct{}{}:
	default:
	}
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.push(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.nudgeCh:
			r.push(ctx)
		case <-ticker.C:
			r.push(ctx)
		}
	}
}

func (r *Refresher) push(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	payload, err := r.snapshot(ctx, r.profileID)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("snapshot refresh failed", zap.Error(err), zap.String("profile_id", r.profileID.String()))
		}
		return
	}
	r.sender.SendToProfile(r.profileID, EventSnapshot, payload)
}
