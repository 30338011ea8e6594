// Package ws implements the realtime notification push: a websocket hub
// that fans new notifications out to every device connected for a trip.
package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// Message is the wire envelope sent to connected devices.
type Message struct {
	Type   string              `json:"type"`
	TripID uuid.UUID           `json:"trip_id"`
	Data   domain.Notification `json:"data"`
	Time   int64               `json:"time"`
}

// MessageTypeNotification is the only server-initiated message type today.
const MessageTypeNotification = "notification"

// Hub maintains the set of connected clients, keyed by trip, and broadcasts
// notification messages to them. All map mutation happens on the Run
// goroutine via the register/unregister channels; Notify goes through the
// broadcast channel so services never touch the client map.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
}

// NewHub creates a Hub. Call Run on its own goroutine before serving clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 16),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing
// every client's send channel on the way out.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Notify implements service.Notifier: it queues a notification for every
// client connected to the trip. Non-blocking — if the hub is saturated the
// message is dropped; the device will see the notification on its next
// active-list fetch anyway.
func (h *Hub) Notify(tripID uuid.UUID, n domain.Notification) {
	msg := Message{
		Type:   MessageTypeNotification,
		TripID: tripID,
		Data:   n,
		Time:   time.Now().Unix(),
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("ws: broadcast queue full, dropping notification", "trip_id", tripID)
	}
}

// ClientCount returns the number of clients connected for a trip.
func (h *Hub) ClientCount(tripID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.tripID] == nil {
		h.clients[c.tripID] = make(map[*Client]bool)
	}
	h.clients[c.tripID][c] = true
	slog.Debug("ws: client connected", "trip_id", c.tripID, "clients", len(h.clients[c.tripID]))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[c.tripID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.tripID)
	}
}

func (h *Hub) send(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[msg.TripID] {
		select {
		case c.send <- msg:
		default:
			// Slow consumer — drop the message rather than block the hub.
			slog.Warn("ws: client send buffer full", "trip_id", msg.TripID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tripID, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, tripID)
	}
}
