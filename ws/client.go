package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxCommandSize = 4096
)

// command is a control message sent by a client
type command struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}

// Command types
const (
	cmdSubscribe   = "subscribe"
	cmdUnsubscribe = "unsubscribe"
	cmdRequestSync = "request_sync"
)

// topicFilter decides which topics a client receives. The zero value
// accepts every topic.
type topicFilter struct {
	only    map[string]struct{} // nil: every topic not in excluded
	exclude map[string]struct{}
}

func (f *topicFilter) subscribe(topics []string) {
	if f.only == nil {
		f.only = make(map[string]struct{}, len(topics))
	}
	for _, t := range topics {
		f.only[t] = struct{}{}
		delete(f.exclude, t)
	}
}

func (f *topicFilter) unsubscribe(topics []string) {
	for _, t := range topics {
		if f.only != nil {
			delete(f.only, t)
			continue
		}
		if f.exclude == nil {
			f.exclude = make(map[string]struct{}, len(topics))
		}
		f.exclude[t] = struct{}{}
	}
}

func (f *topicFilter) allows(topic string) bool {
	if _, ok := f.exclude[topic]; ok {
		return false
	}
	if f.only == nil {
		return true
	}
	_, ok := f.only[topic]
	return ok
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	filter topicFilter
}

func (c *client) wants(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.allows(topic)
}

// readLoop handles client commands until the connection fails, then
// unregisters the client.
func (c *client) readLoop() {
	defer func() {
		select {
		case c.hub.leaves <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		c.handle(msg)
	}
}

// writeLoop drains the send queue and keeps the connection alive with pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(msg []byte) {
	var cmd command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		c.hub.logger.Debug("ignoring malformed command", zap.String("client", c.id), zap.Error(err))
		return
	}

	switch cmd.Type {
	case cmdSubscribe:
		c.mu.Lock()
		c.filter.subscribe(cmd.Topics)
		c.mu.Unlock()
	case cmdUnsubscribe:
		c.mu.Lock()
		c.filter.unsubscribe(cmd.Topics)
		c.mu.Unlock()
	case cmdRequestSync:
		c.hub.sync(c)
	default:
		c.hub.logger.Debug("unknown command", zap.String("client", c.id), zap.String("type", cmd.Type))
	}
}
