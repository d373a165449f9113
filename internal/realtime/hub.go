package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait (seconds) are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// RedisPublisher publishes feed events for cross-instance broadcast.
type RedisPublisher interface {
	PublishModerationEvent(event string, payload []byte) error
}

// RedisSubscriber subscribes to the feed channel and invokes handler for
// incoming events.
type RedisSubscriber interface {
	SubscribeModerationFeed(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected admin dashboards and broadcasts
// moderation feed events. Redis pub/sub carries events across instances:
// events are published to Redis only, and the subscription callback performs
// the local broadcast once, avoiding duplicate delivery.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     RedisPublisher
	sub     RedisSubscriber
	cancel  func()
}

// NewHub creates the moderation feed hub. pub/sub may be nil in tests.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Start subscribes to the Redis feed channel. No-op without a subscriber.
func (h *Hub) Start() error {
	if h.sub == nil {
		return nil
	}
	cancel, err := h.sub.SubscribeModerationFeed(func(event string, payload []byte) {
		h.broadcastLocal(event, json.RawMessage(payload))
	})
	if err != nil {
		return err
	}
	h.cancel = cancel
	return nil
}

// Stop cancels the Redis subscription.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Register adds a connected dashboard.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("moderation feed client joined", zap.String("client_id", c.ID), zap.String("email", c.Email))
}

// Unregister removes a dashboard.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("moderation feed client left", zap.String("client_id", c.ID))
}

// BroadcastModerationEvent fans an event out to all connected dashboards.
// With Redis available the event is published only; the subscription callback
// delivers it locally so every instance (including this one) broadcasts once.
func (h *Hub) BroadcastModerationEvent(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishModerationEvent(event, data); err == nil {
			return
		}
		// Publish failed; degrade to local-only delivery.
	}
	h.broadcastLocal(event, json.RawMessage(data))
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastLocal(event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
