// Package ws broadcasts checklist and agent events to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Topics
const (
	TopicChecklist = "checklist"
	TopicAgent     = "agent"
	TopicUsage     = "usage"
	TopicSync      = "sync"
)

// EventInitialState carries the state provider's snapshot on TopicSync
const EventInitialState = "initial_state"

// Event is one message on the wire
type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

const (
	sendBuffer      = 256
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	// No auth and no origin policy: CORS is handled by the api layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to connected clients. All client-set mutations
// happen on the Run goroutine; mu only guards reads from other goroutines.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	state   func() interface{}

	events chan Event
	joins  chan *client
	leaves chan *client
	done   chan struct{}
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger.Named("ws"),
		clients: make(map[*client]struct{}),
		events:  make(chan Event, broadcastBuffer),
		joins:   make(chan *client),
		leaves:  make(chan *client),
		done:    make(chan struct{}),
	}
}

// Run delivers events until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.joins:
			h.join(c)
		case c := <-h.leaves:
			h.leave(c)
		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", zap.String("client", c.id), zap.Int("total", total))
	h.sync(c)
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.drop(c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", zap.String("client", c.id), zap.Int("total", total))
	}
}

// drop removes c and closes its queue. Caller holds mu.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) fanOut(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.String("topic", ev.Topic), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(ev.Topic) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow client", zap.String("client", c.id))
			h.drop(c)
		}
	}
}

func (h *Hub) stop() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
		c.conn.Close()
	}
}

// Broadcast queues ev for delivery. It is a no-op once Run has returned.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// BroadcastRaw marshals data and broadcasts it as an Event.
func (h *Hub) BroadcastRaw(topic, eventType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("marshal payload", zap.String("topic", topic), zap.String("type", eventType), zap.Error(err))
		return
	}
	h.Broadcast(Event{Topic: topic, Type: eventType, Data: raw})
}

// SetStateProvider sets the snapshot sent to clients on connect and on
// request_sync.
func (h *Hub) SetStateProvider(fn func() interface{}) {
	h.mu.Lock()
	h.state = fn
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.joins <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop()
}

// sync sends the current state snapshot to c, if a provider is set.
// A full queue skips the snapshot; the client can ask again.
func (h *Hub) sync(c *client) {
	h.mu.RLock()
	provider := h.state
	h.mu.RUnlock()
	if provider == nil {
		return
	}

	state := provider()
	if state == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		h.logger.Error("marshal state", zap.Error(err))
		return
	}
	msg, _ := json.Marshal(Event{Topic: TopicSync, Type: EventInitialState, Data: raw})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
