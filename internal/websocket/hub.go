package websocket

import (
	"sync"

	"communityapp/internal/logger"

	"go.uber.org/zap"
)

const (
	EventPresence  = "user_presence"
	EventBroadcast = "broadcast"
	EventPong      = "pong"
)

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients by user ID
	clients map[uint]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Message is one frame sent to clients. UserID 0 means every client.
type Message struct {
	UserID  uint        `json:"-"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnlineUserIDs returns the ids of users with at least one live connection.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uint, 0, len(h.clients))
	for uid := range h.clients {
		ids = append(ids, uid)
	}
	return ids
}

// Run processes registrations and deliveries until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			isNew := len(h.clients[client.UserID]) == 0
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			count := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Debug("websocket client registered", zap.Uint("user_id", client.UserID), zap.Int("connections", count))

			if isNew {
				h.broadcastPresence(client.UserID, true)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			wasLast := h.removeLocked(client)
			h.mu.Unlock()
			logger.Debug("websocket client unregistered", zap.Uint("user_id", client.UserID))

			if wasLast {
				h.broadcastPresence(client.UserID, false)
			}

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// deliver fans a message out. Clients whose buffers are full are dropped.
func (h *Hub) deliver(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	send := func(client *Client) {
		select {
		case client.send <- message:
		default:
			h.removeLocked(client)
		}
	}

	if message.UserID != 0 {
		for client := range h.clients[message.UserID] {
			send(client)
		}
		return
	}
	for _, clients := range h.clients {
		for client := range clients {
			send(client)
		}
	}
}

// removeLocked unregisters client and reports whether it was the user's last
// connection. Caller holds mu.
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.clients[client.UserID]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
		return true
	}
	return false
}

// SendToUser queues an event for every connection of userID.
func (h *Hub) SendToUser(userID uint, eventType string, payload interface{}) {
	h.enqueue(&Message{UserID: userID, Type: eventType, Payload: payload})
}

// BroadcastToAll queues an event for every connected client.
func (h *Hub) BroadcastToAll(eventType string, payload interface{}) {
	h.enqueue(&Message{Type: eventType, Payload: payload})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		logger.Warn("websocket broadcast channel full, dropping message",
			zap.Uint("user_id", message.UserID), zap.String("type", message.Type))
	}
}

// ClientCount returns the number of live connections for userID.
func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

func (h *Hub) broadcastPresence(userID uint, online bool) {
	h.BroadcastToAll(EventPresence, map[string]interface{}{
		"user_id": userID,
		"online":  online,
	})
}
