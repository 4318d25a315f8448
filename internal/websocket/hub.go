package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Change actions announced to clients.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionToggled  = "toggled"
	ActionDeleted  = "deleted"
	ActionCleared  = "cleared"
	ActionImported = "imported"
)

// Change tells clients the list changed. It carries no item data; clients
// re-read the list.
type Change struct {
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Count  int64  `json:"count,omitempty"`
}

// Hub fans changes out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Notify broadcasts a change. Slow clients whose buffer is full miss it.
func (h *Hub) Notify(ch Change) {
	data, err := json.Marshal(ch)
	if err != nil {
		h.logger.Error("marshal change", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping change for slow client", "action", ch.Action)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
