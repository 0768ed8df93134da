// Package ws manages client websocket connections and delivers outbound
// events. The hub knows nothing about rooms; the coordinator decides the
// recipient set for every broadcast.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"gridrush/internal/events"
)

const sendBuffer = 64

// Client represents a single websocket connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// WritePump drains the Send channel onto the connection until the context
// ends or the channel closes.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks connected clients by connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers one event to one connection. Non-blocking: a client whose
// buffer is full drops the event rather than stalling the caller, which may
// be holding a room lock.
func (h *Hub) Send(connID string, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(connID, data)
}

// SendMany delivers one event to each listed connection.
func (h *Hub) SendMany(connIDs []string, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range connIDs {
		h.deliver(id, data)
	}
}

// deliver requires h.mu held (read is enough).
func (h *Hub) deliver(connID string, data []byte) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Slow consumer, drop the event.
	}
}
