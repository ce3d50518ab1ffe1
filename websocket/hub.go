// Package websocket pushes snapshot-change notifications to a user's
// connected clients, closing the backend→frontend leg of the sync
// loop.
package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Notification is one message sent over a client connection.
type Notification struct {
	Type       string `json:"type"`
	Collection string `json:"collection,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Client is one connected WebSocket client bound to an authenticated
// user.
type Client struct {
	UserID string
	Conn   *websocket.Conn

	mu sync.Mutex
}

func (c *Client) send(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(n)
}

// Hub maintains the set of active clients per user.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]struct{})
			}
			h.clients[client.UserID][client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
			client.Conn.Close()
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Stop shuts the event loop down and closes every connection.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, conns := range h.clients {
		for client := range conns {
			client.Conn.Close()
		}
		delete(h.clients, uid)
	}
}

// NotifyUser tells every connection of the given user that a
// collection applied a fresh snapshot.
func (h *Hub) NotifyUser(uid, collection string) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[uid]))
	for client := range h.clients[uid] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	for _, client := range conns {
		if err := client.send(Notification{Type: "snapshot", Collection: collection}); err != nil {
			log.Printf("Error notifying client of user %s: %v", uid, err)
		}
	}
}
