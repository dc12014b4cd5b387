// Package ws pushes habit events to connected browsers. Delivery is
// fire-and-forget: a slow client's buffer fills and messages drop, they
// never block a request handler.
package ws

import (
	"log/slog"
	"sync"
)

// Hub tracks the open connections per user and routes events to them.
// A user can hold several connections at once (multiple tabs).
type Hub struct {
	userClients map[string]map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	shutdown    chan struct{}
	once        sync.Once
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		userClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		shutdown:    make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			h.mu.Lock()
			for _, clients := range h.userClients {
				for client := range clients {
					client.CloseSend()
				}
			}
			h.userClients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			slog.Info("shutdown complete", "component", "hub")
			return

		case client := <-h.register:
			h.mu.Lock()
			clients, ok := h.userClients[client.userID]
			if !ok {
				clients = make(map[*Client]bool)
				h.userClients[client.userID] = clients
			}
			clients[client] = true
			h.mu.Unlock()
			slog.Info("client connected", "component", "hub", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.userClients[client.userID]; ok {
				if _, registered := clients[client]; registered {
					delete(clients, client)
					client.CloseSend()
					if len(clients) == 0 {
						delete(h.userClients, client.userID)
					}
				}
			}
			h.mu.Unlock()
			slog.Info("client disconnected", "component", "hub", "user_id", client.userID)
		}
	}
}

// Register hands a new authenticated connection to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.shutdown:
	}
}

// Unregister removes a connection. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.shutdown:
	}
}

// BroadcastToUser delivers an event to every connection the user holds.
// Full buffers drop the message rather than block.
func (h *Hub) BroadcastToUser(userID string, msg *WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[userID] {
		client.Send(msg)
	}
}

// ConnectionCount reports how many connections the user currently holds.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// Shutdown stops the hub and closes every client send channel.
func (h *Hub) Shutdown() {
	h.once.Do(func() { close(h.shutdown) })
}
