package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// PresenceHandler is called when the number of open sockets of a profile changes.
type PresenceHandler func(profileID uuid.UUID, count int)

// Hub maintains profile_id -> set of connections and delivers per-profile events.
// Uses Redis pub/sub for horizontal scaling: a profile may be connected to another instance.
type Hub struct {
	// profileID -> map[clientID]*Client
	profiles   map[uuid.UUID]map[string]*Client
	subs       map[uuid.UUID]func() // cancel Redis subscription per profile
	mu         sync.RWMutex
	logger     *zap.Logger
	redis      RedisPublisher
	redisSub   RedisSubscriber
	onPresence PresenceHandler
	onRefresh  func(profileID uuid.UUID)
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance delivery).
type RedisPublisher interface {
	PublishProfileEvent(profileID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to profile channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeProfile(profileID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil for a single instance.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		profiles: make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// SetPresenceHandler sets the callback for socket count changes.
func (h *Hub) SetPresenceHandler(fn PresenceHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPresence = fn
}

// SetRefreshHandler sets the callback for client-requested refreshes.
func (h *Hub) SetRefreshHandler(fn func(profileID uuid.UUID)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRefresh = fn
}

// Register adds a client. Starts the Redis subscription for the profile on its first socket.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.profiles[c.ProfileID] == nil {
		h.profiles[c.ProfileID] = make(map[string]*Client)
		if h.redisSub != nil {
			profileID := c.ProfileID
			cancel, err := h.redisSub.SubscribeProfile(profileID, func(event string, payload []byte) {
				h.SendToProfile(profileID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("redis subscribe failed", zap.Error(err), zap.String("profile_id", profileID.String()))
			} else {
				h.subs[profileID] = cancel
			}
		}
	}
	h.profiles[c.ProfileID][c.ID] = c
	count := len(h.profiles[c.ProfileID])
	onPresence := h.onPresence
	h.mu.Unlock()
	if onPresence != nil {
		onPresence(c.ProfileID, count)
	}
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("profile_id", c.ProfileID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the last socket closes.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	m, ok := h.profiles[c.ProfileID]
	if !ok || m[c.ID] == nil {
		h.mu.Unlock()
		return
	}
	delete(m, c.ID)
	count := len(m)
	if count == 0 {
		delete(h.profiles, c.ProfileID)
		if cancel, ok := h.subs[c.ProfileID]; ok {
			cancel()
			delete(h.subs, c.ProfileID)
		}
	}
	onPresence := h.onPresence
	h.mu.Unlock()
	if onPresence != nil {
		onPresence(c.ProfileID, count)
	}
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("profile_id", c.ProfileID.String()))
}

// SendToProfile sends a message to every local socket of a profile.
func (h *Hub) SendToProfile(profileID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal realtime payload failed", zap.Error(err), zap.String("event", event))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.profiles[profileID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToProfile delivers an event to a profile on whichever instance holds its sockets.
// With Redis configured it only publishes, so the subscriber delivers once, local sockets included.
func (h *Hub) PublishToProfile(profileID uuid.UUID, event string, payload interface{}) {
	if h.redis == nil {
		h.SendToProfile(profileID, event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal realtime payload failed", zap.Error(err), zap.String("event", event))
		return
	}
	if err := h.redis.PublishProfileEvent(profileID, event, data); err != nil {
		h.logger.Warn("redis publish failed", zap.Error(err), zap.String("profile_id", profileID.String()))
	}
}

// Connections returns the number of local sockets of a profile.
func (h *Hub) Connections(profileID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles[profileID])
}

func (h *Hub) requestRefresh(profileID uuid.UUID) {
	h.mu.RLock()
	fn := h.onRefresh
	h.mu.RUnlock()
	if fn != nil {
		fn(profileID)
	}
}
