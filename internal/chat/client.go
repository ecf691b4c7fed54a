package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/collabsphere-dev/collabsphere/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Identity is the authenticated user behind a connection, resolved by the
// auth middleware before the upgrade.
type Identity struct {
	ID     uint
	Name   string
	Email  string
	Avatar string
}

// Client is one live WebSocket connection. The read pump dispatches inbound
// events to the hub; the write pump drains the send channel. Only the pumps
// touch the underlying connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	identity Identity

	// Current subscription, 0 when unjoined. Guarded by hub.mu.
	projectID uint
}

func NewClient(hub *Hub, conn *websocket.Conn, identity Identity) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		identity: identity,
	}
}

// ReadPump reads events from the connection until it closes, then cleans up
// the subscription. Runs in the connection's goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Error("Failed to set read deadline", "user_id", c.identity.ID, "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket closed unexpectedly", "user_id", c.identity.ID, "error", err)
			}
			break
		}

		var event inboundEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			c.sendEvent(errorEvent{Type: EventError, Code: "validation", Message: "Malformed event"})
			continue
		}

		switch event.Type {
		case EventJoinProject:
			c.hub.Join(context.Background(), c, event.ProjectID)
		case EventLeaveProject:
			c.hub.Leave(c, event.ProjectID)
		case EventSendMessage:
			c.hub.Post(context.Background(), c, event.ProjectID, event.Content)
		default:
			c.sendEvent(errorEvent{Type: EventError, Code: "validation", Message: "Unknown event type"})
		}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings. Runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendEvent(event interface{}) {
	payload, err := json.Marshal(event)

	if err != nil {
		logger.Error("Failed to encode event", "user_id", c.identity.ID, "error", err)
		return
	}

	select {
	case c.send <- payload:
	default:
	}
}
