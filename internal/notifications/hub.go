package notifications

import (
	"context"
	"errors"
	"sync"

	"forum/internal/middleware"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const maxTotalConns = 10000

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// Hub tracks websocket clients of the community feed and broadcasts to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "community feed" }

// Register adds conn to the hub.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
	h.clients[client] = struct{}{}
	middleware.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send queue. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	middleware.ActiveWebSockets.Dec()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll queues message on every client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// StartWiring forwards every event the Notifier sees to all local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, h.BroadcastAll)
}

// Shutdown closes every client queue. WritePump then sends a close frame and exits.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
		middleware.ActiveWebSockets.Dec()
	}
	return nil
}
