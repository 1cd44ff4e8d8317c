package broadcast

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 256
)

// Client is one websocket connection with a match subscription filter.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub
	send chan ServerMessage

	mu      sync.RWMutex
	matches map[string]bool
}

// NewClient wraps an upgraded connection.
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:      id,
		conn:    conn,
		hub:     hub,
		send:    make(chan ServerMessage, sendBufferSize),
		matches: make(map[string]bool),
	}
}

// SubscribedTo reports whether the client wants updates for a match. An
// empty filter subscribes to everything.
func (c *Client) SubscribedTo(matchID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.matches) == 0 {
		return true
	}
	return c.matches[matchID]
}

// Subscribe replaces the client's match filter.
func (c *Client) Subscribe(matchIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = make(map[string]bool, len(matchIDs))
	for _, id := range matchIDs {
		c.matches[id] = true
	}
}

// TrySend queues a message without blocking; false means the buffer is full.
func (c *Client) TrySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump consumes client messages until the connection drops.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if err := ctx.Err(); err != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("broadcast: client %s closed unexpectedly: %v", c.ID, err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

// WritePump pushes queued messages and keepalive pings to the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.Subscribe(msg.MatchIDs)
	case MessageTypeUnsubscribe:
		c.Subscribe(nil)
	case MessageTypeHeartbeat:
		c.TrySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now().UTC()})
	default:
		c.TrySend(ServerMessage{
			Type:      MessageTypeError,
			Error:     "unknown message type: " + msg.Type,
			Timestamp: time.Now().UTC(),
		})
	}
}
