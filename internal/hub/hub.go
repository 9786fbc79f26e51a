// Package hub is the live subscription registry behind the queue event
// broadcaster. It owns the set of connected clients and fans payloads out to
// the subset whose subscription matches; it never re-reads or caches queue
// state itself.
package hub

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscription scopes what a client receives. An empty DoctorID means the
// client sees queue updates for every doctor; RoomID opts the client into a
// single consultation session. Emergency broadcasts ignore both.
type Subscription struct {
	DoctorID string
	RoomID   string
}

type Client struct {
	ID           string
	Send         chan []byte
	Subscription Subscription
}

const clientSendBuffer = 16

func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, clientSendBuffer),
	}
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logrus.Logger
}

func New(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

// Unregister removes the client and closes its send channel. Safe to call
// once per client; the caller owns that guarantee.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) Subscribe(client *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Subscription = sub
}

// PublishQueue delivers a queue snapshot to every client whose doctor filter
// matches. Delivery is non-blocking: a subscriber with a full buffer misses
// this update and re-syncs on the next one.
func (h *Hub) PublishQueue(doctorID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Subscription.DoctorID != "" && client.Subscription.DoctorID != doctorID {
			continue
		}
		h.send(client, payload)
	}
}

// PublishAll delivers to every connected client regardless of subscription.
func (h *Hub) PublishAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.send(client, payload)
	}
}

// PublishRoom delivers to clients subscribed to the session room. excludeID
// skips one client, used so typing signals do not echo back to the sender.
func (h *Hub) PublishRoom(roomID string, payload []byte, excludeID string) {
	if roomID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Subscription.RoomID != roomID {
			continue
		}
		if excludeID != "" && client.ID == excludeID {
			continue
		}
		h.send(client, payload)
	}
}

func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		h.log.Debugf("dropping message for slow client %s", client.ID)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
