package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/model"
)

// Message is the JSON frame pushed to connected family devices.
type Message struct {
	Type         string              `json:"type"`
	UserID       int64               `json:"user_id,omitempty"`
	TaskID       int64               `json:"task_id,omitempty"`
	RewardID     int64               `json:"reward_id,omitempty"`
	Tokens       int                 `json:"tokens,omitempty"`
	Balance      int                 `json:"balance,omitempty"`
	Achievements []model.Achievement `json:"achievements,omitempty"`
	Extra        map[string]any      `json:"extra,omitempty"`
}

// FromEvent converts a domain event into its wire frame.
func FromEvent(e events.Event) Message {
	return Message{
		Type:         e.Kind,
		UserID:       e.UserID,
		TaskID:       e.TaskID,
		RewardID:     e.RewardID,
		Tokens:       e.Tokens,
		Balance:      e.Balance,
		Achievements: e.Achievements,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
