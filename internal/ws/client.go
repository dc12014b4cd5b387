package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Mohomed-Zaid/HabitFlow/internal/constants"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = 45 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client represents a single authenticated WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan *WSMessage
	userID string

	// mu guards closed. Send and CloseSend race during shutdown: the hub
	// goroutine closes channels while ReadPump and ServeWS may still be
	// queueing, so the channel is never touched without checking closed.
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *WSMessage, constants.WSClientSendBufferSize),
		userID: userID,
	}
}

// Send queues a message for this connection, dropping it when the
// buffer is full. Sends after CloseSend are silently discarded.
func (c *Client) Send(msg *WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		slog.Warn("dropping message for slow client", "component", "ws", "user_id", c.userID, "type", msg.Type)
	}
}

// CloseSend closes the send channel exactly once, ending WritePump.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump drains client messages until the connection dies. Clients
// only send pings and subscription notices; everything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "component", "ws", "user_id", c.userID, "error", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("ignoring unparsable client message", "component", "ws", "user_id", c.userID)
			continue
		}

		switch msg.Type {
		case CmdPing:
			c.Send(NewMessage(EventPong, nil))
		case CmdSubscribe:
			// Connections receive all of their user's events already;
			// subscribe is informational.
		default:
			slog.Debug("ignoring unknown client message", "component", "ws", "user_id", c.userID, "type", msg.Type)
		}
	}
}

// WritePump serializes queued messages onto the connection and keeps it
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Warn("websocket write error", "component", "ws", "user_id", c.userID, "error", err)
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
