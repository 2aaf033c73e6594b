package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bananas_server/internal/game"
	"bananas_server/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 32 << 10
	sendBuffer     = 256
)

// Client is one websocket connection. Its identity is the connection, not the
// player: the room it joins maps it onto a stable game.PlayerID.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
	Done chan struct{}

	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.Mutex
	room   *Room
	closed bool
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Hub:     hub,
		Done:    make(chan struct{}),
		limiter: rate.NewLimiter(hub.opts.ActionRate, hub.opts.ActionBurst),
		log:     logger.With("conn", id),
	}
}

// Run blocks until the connection is gone.
func (c *Client) Run() {
	ConnectionsActive.Inc()
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
		ConnectionsActive.Dec()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Type == "" {
			c.log.Debug("malformed message ignored", "bytes", len(msg))
			continue
		}
		if !c.limiter.Allow() {
			Actions.WithLabelValues(env.Type, "limited").Inc()
			c.sendError("too many messages, slow down")
			continue
		}
		c.Hub.Dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// trySend never blocks the room actor; a full buffer drops the frame.
func (c *Client) trySend(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		MessagesDropped.Inc()
		c.log.Warn("send buffer full, message dropped")
		return false
	}
}

func (c *Client) sendError(msg string) {
	data, err := json.Marshal(Message{Type: MsgError, Payload: game.ErrorPayload{Message: msg}})
	if err != nil {
		return
	}
	c.trySend(data)
}

// bind records the room this connection plays in. It fails once the
// connection has started shutting down, so the room can put the player
// straight into grace instead of keeping a dead connection.
func (c *Client) bind(r *Room) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.room = r
	return true
}

func (c *Client) unbind(r *Room) {
	c.mu.Lock()
	if c.room == r {
		c.room = nil
	}
	c.mu.Unlock()
}

func (c *Client) currentRoom() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) disconnect() {
	c.mu.Lock()
	c.closed = true
	r := c.room
	c.room = nil
	c.mu.Unlock()

	if r != nil {
		c.Hub.OnDisconnect(c, r)
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}
