package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection attached to the hub. userID stays
// empty until the connection identifies itself.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	// rooms and ackedOnline are owned by the hub loop.
	rooms       map[string]struct{}
	ackedOnline map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:          uuid.NewString(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		rooms:       make(map[string]struct{}),
		ackedOnline: make(map[string]struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// enqueue hands a frame to the write pump without blocking; a client
// whose buffer is full is considered dead and gets dropped.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) sendEvent(t EventType, payload any) {
	evt, err := NewEvent(t, payload)
	if err != nil {
		c.hub.log.Error("encode event payload", "type", t, "error", err)
		return
	}
	frame, err := evt.Encode()
	if err != nil {
		c.hub.log.Error("encode event frame", "type", t, "error", err)
		return
	}
	if !c.enqueue(frame) {
		c.hub.drop(c)
	}
}

// ReadPump pulls frames off the socket and feeds them to the hub. It
// owns the connection's read side and triggers unregistration when the
// socket closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket read", "connId", c.id, "error", err)
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.hub.log.Warn("malformed frame dropped", "connId", c.id, "error", err)
			continue
		}
		c.hub.inbound <- &inboundEvent{client: c, event: &evt}
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
