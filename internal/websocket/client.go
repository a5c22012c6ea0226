package websocket

import (
	"encoding/json"
	"time"

	"communityapp/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

// ReadReceiptFunc is called when a client acknowledges a notification.
type ReadReceiptFunc func(userID, notificationID uint)

// inbound is a frame sent by the browser.
type inbound struct {
	Type    string `json:"type"`
	Payload struct {
		NotificationID uint `json:"notification_id"`
	} `json:"payload"`
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages, closed by the hub.
	send chan *Message

	// Application-level pong replies, owned by the client.
	pongs chan struct{}

	onReadReceipt ReadReceiptFunc

	UserID uint
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint, onReadReceipt ReadReceiptFunc) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan *Message, 256),
		pongs:         make(chan struct{}, 1),
		onReadReceipt: onReadReceipt,
		UserID:        userID,
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", zap.Uint("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "ping":
		select {
		case c.pongs <- struct{}{}:
		default:
		}
	case "read_receipt":
		if c.onReadReceipt != nil && msg.Payload.NotificationID != 0 {
			c.onReadReceipt(c.UserID, msg.Payload.NotificationID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-c.pongs:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			pong := &Message{Type: EventPong, Payload: map[string]interface{}{"timestamp": time.Now().Unix()}}
			if err := c.conn.WriteJSON(pong); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start runs the write pump in the background and blocks on the read pump.
func (c *Client) Start() {
	go c.writePump()
	c.readPump()
}
