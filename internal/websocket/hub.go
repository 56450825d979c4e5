package websocket

import (
	"encoding/json"
	"sync"

	"chat-service/internal/models"
	"chat-service/pkg/logger"
)

// Hub is the channel registry: connections register a send queue, then
// subscribe to named channels, and events published to a channel fan out
// to every subscriber. The hub knows nothing about the transport beyond
// the byte queues, so it is fully exercisable without a socket.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]chan []byte
	channels map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:    make(map[string]chan []byte),
		channels: make(map[string]map[string]struct{}),
	}
}

// Register attaches a connection's outbound queue to the hub.
func (h *Hub) Register(connID string, send chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = send
}

// Unregister drops a connection and all its subscriptions, closing its
// outbound queue. Messages already queued are still flushed by the
// write pump before it sees the close.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	send, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	for channel, subs := range h.channels {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	close(send)
}

func (h *Hub) Subscribe(connID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connID]; !ok {
		return
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[string]struct{})
		h.channels[channel] = subs
	}
	subs[connID] = struct{}{}
}

func (h *Hub) Unsubscribe(connID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(subs, connID)
	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}

// Publish fans an event out to every subscriber of a channel. A
// connection whose queue is full misses the event rather than blocking
// or killing the rest of the fan-out.
func (h *Hub) Publish(channel string, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshaling event %s: %v", event.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for connID := range h.channels[channel] {
		send, ok := h.conns[connID]
		if !ok {
			continue
		}
		select {
		case send <- data:
		default:
			logger.Warn("Dropping event %s for slow connection %s", event.Event, connID)
		}
	}
}

// Send delivers an event to one connection only.
func (h *Hub) Send(connID string, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshaling event %s: %v", event.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	send, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case send <- data:
	default:
		logger.Warn("Dropping event %s for slow connection %s", event.Event, connID)
	}
}

// Subscribers reports how many connections are subscribed to a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
