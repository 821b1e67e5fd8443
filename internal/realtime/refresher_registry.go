package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefresherRegistry holds running refreshers per profile (thread-safe).
type RefresherRegistry struct {
	mu         sync.Mutex
	refreshers map[uuid.UUID]*Refresher
	snapshot   SnapshotFunc
	sender     Sender
	interval   time.Duration
	logger     *zap.Logger

	// presenceMu orders OnPresence decisions; counter reports live sockets.
	presenceMu sync.Mutex
	counter    func(profileID uuid.UUID) int
}

// NewRefresherRegistry creates a registry whose refreshers share snapshot, sender and interval.
func NewRefresherRegistry(snapshot SnapshotFunc, sender Sender, interval time.Duration, logger *zap.Logger) *RefresherRegistry {
	return &RefresherRegistry{
		refreshers: make(map[uuid.UUID]*Refresher),
		snapshot:   snapshot,
		sender:     sender,
		interval:   interval,
		logger:     logger,
	}
}

// Start starts the refresher for profileID if not already running.
func (reg *RefresherRegistry) Start(profileID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.refreshers[profileID] != nil {
		return
	}
	r := NewRefresher(profileID, reg.snapshot, reg.sender, reg.interval, reg.logger)
	reg.refreshers[profileID] = r
	r.Start()
}

// Stop stops the refresher for profileID and removes it from the registry.
func (reg *RefresherRegistry) Stop(profileID uuid.UUID) {
	reg.mu.Lock()
	r := reg.refreshers[profileID]
	delete(reg.refreshers, profileID)
	reg.mu.Unlock()
	if r != nil {
		r.Stop()
	}
}

// Nudge asks the refresher of profileID to push now.
func (reg *RefresherRegistry) Nudge(profileID uuid.UUID) {
	reg.mu.Lock()
	r := reg.refreshers[profileID]
	reg.mu.Unlock()
	if r != nil {
		r.Nudge()
	}
}

// Running returns the number of active refreshers.
func (reg *RefresherRegistry) Running() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.refreshers)
}

// StopAll stops every refresher, for shutdown.
func (reg *RefresherRegistry) StopAll() {
	reg.mu.Lock()
	list := make([]*Refresher, 0, len(reg.refreshers))
	for id, r := range reg.refreshers {
		list = append(list, r)
		delete(reg.refreshers, id)
	}
	reg.mu.Unlock()
	for _, r := range list {
		r.Stop()
	}
}

// SetCounter sets the live socket count OnPresence trusts over the count it
// was called with. Hub callbacks run outside the hub lock and may arrive out
// of order, so pass Hub.Connections.
func (reg *RefresherRegistry) SetCounter(fn func(profileID uuid.UUID) int) {
	reg.presenceMu.Lock()
	defer reg.presenceMu.Unlock()
	reg.counter = fn
}

// OnPresence starts a refresher when a profile opens its first socket and
// stops it when the last one closes. Use it as the hub's PresenceHandler.
func (reg *RefresherRegistry) OnPresence(profileID uuid.UUID, count int) {
	reg.presenceMu.Lock()
	defer reg.presenceMu.Unlock()
	if reg.counter != nil {
		count = reg.counter(profileID)
	}
	if count > 0 {
		reg.Start(profileID)
		return
	}
	reg.Stop(profileID)
}
