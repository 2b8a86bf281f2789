package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write so one wedged connection cannot hold
	// its writer forever.
	writeWait = 10 * time.Second

	// sendBuffer is the per-subscriber event queue. A subscriber this far
	// behind is dropped and re-syncs by reconnecting.
	sendBuffer = 32
)

// ChangeEvent tells subscribers that one collection of their dinner changed.
// Insert, update, and delete are not distinguished; subscribers re-query.
type ChangeEvent struct {
	Collection string `json:"collection"`
}

// Client is one WebSocket subscriber scoped to a single dinner
type Client struct {
	DinnerID string
	Conn     *websocket.Conn

	send chan []byte
}

// NewClient wraps an upgraded connection as a subscriber for one dinner
func NewClient(dinnerID string, conn *websocket.Conn) *Client {
	return &Client{
		DinnerID: dinnerID,
		Conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// WritePump drains the send queue to the connection, interleaving pings to
// keep the connection alive through proxies. It returns when the queue closes
// or a write fails.
func (c *Client) WritePump() {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.Conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-t.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans change notifications out to everyone viewing a dinner
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds a subscriber for its dinner
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.DinnerID] == nil {
		h.clients[c.DinnerID] = make(map[*Client]struct{})
	}
	h.clients[c.DinnerID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a subscriber, closes its send queue, and closes its
// connection. Safe to call more than once per client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var registered bool
	if set := h.clients[c.DinnerID]; set != nil {
		if _, registered = set[c]; registered {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.DinnerID)
			}
		}
	}
	h.mu.Unlock()

	// The queue closes exactly once, after the client is out of the map, so
	// no Notify can still be queueing into it.
	if registered {
		close(c.send)
	}
	_ = c.Conn.Close()
}

// Notify broadcasts a collection-changed event to a dinner's subscribers.
// Delivery is queued, never written inline: this runs on the mutation path
// and must not wait on anyone's connection. A subscriber whose queue is full
// has stopped draining and gets dropped.
func (h *Hub) Notify(dinnerID, collection string) {
	msg, _ := json.Marshal(ChangeEvent{Collection: collection})

	var stalled []*Client
	h.mu.RLock()
	for c := range h.clients[dinnerID] {
		select {
		case c.send <- msg:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.Unregister(c)
	}
}

// Subscribers returns the number of live subscribers for a dinner
func (h *Hub) Subscribers(dinnerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[dinnerID])
}
