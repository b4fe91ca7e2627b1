package sse

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/execution-hub/supervisor/internal/domain/dispatch"
)

const (
	// EventDispatchStage is the SSE event name for stage transitions.
	EventDispatchStage = "dispatch.stage"
	// EventConnected is sent once to a client right after it registers.
	EventConnected = "connected"

	clientBuffer = 100
)

var (
	ErrClientNotFound = errors.New("SSE client not found")
	ErrChannelFull    = errors.New("SSE message channel full")
)

// Client is one open event stream.
type Client struct {
	ClientID    string
	UserID      string
	ConnectedAt time.Time
	Messages    chan *Message
}

func NewClient(clientID, userID string) *Client {
	return &Client{
		ClientID:    clientID,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		Messages:    make(chan *Message, clientBuffer),
	}
}

// Message is a single SSE payload.
type Message struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessage(event string, data json.RawMessage) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Hub fans dispatch events out to connected clients. Slow clients drop
// messages rather than block publishers.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds c, replacing and closing any client with the same id.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.ClientID]; ok && old != c {
		close(old.Messages)
	}
	h.clients[c.ClientID] = c
}

// Unregister removes c if it is still the registered client for its id.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.ClientID]; ok && cur == c {
		close(c.Messages)
		delete(h.clients, c.ClientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastToAll(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		trySend(c, msg)
	}
}

func (h *Hub) BroadcastToUser(userID string, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.UserID == userID {
			trySend(c, msg)
		}
	}
}

func (h *Hub) SendToClient(clientID string, msg *Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c := h.clients[clientID]
	if c == nil {
		return ErrClientNotFound
	}
	if !trySend(c, msg) {
		return ErrChannelFull
	}
	return nil
}

// Publish implements dispatch.Publisher. Events that carry a user id go to
// that user's streams only.
func (h *Hub) Publish(ev dispatch.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := NewMessage(EventDispatchStage, data)
	if ev.UserID != "" {
		h.BroadcastToUser(ev.UserID, msg)
		return
	}
	h.BroadcastToAll(msg)
}

// Stop closes every client stream.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Messages)
		delete(h.clients, id)
	}
}

func trySend(c *Client, msg *Message) bool {
	select {
	case c.Messages <- msg:
		return true
	default:
		return false
	}
}
