package realtime

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// SDP offers and ICE candidate batches are much larger than chat
	// text, so the read limit is sized for signaling payloads.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

var (
	errChannelClosed = errors.New("channel closed")
	errChannelFull   = errors.New("send buffer full")
)

// Channel is the registry-facing half of a realtime connection: an
// outbound sink that can be closed with a WebSocket close code.
type Channel interface {
	Send(data []byte) error
	Close(code int, reason string)
}

// Conn is the session-facing transport: a Channel plus the inbound side.
// Sessions read from it strictly in arrival order.
type Conn interface {
	Channel
	// Run starts the write pump and arms read deadlines.
	Run()
	ReadMessage() ([]byte, error)
	// ServerClosed reports whether this side initiated the close.
	ServerClosed() bool
}

// WSChannel adapts a gorilla connection to Conn. Writes are funneled
// through a buffered channel into a single write pump, which also keeps
// the connection alive with pings.
type WSChannel struct {
	id   string
	conn *websocket.Conn

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	code      int
	reason    string
}

func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (c *WSChannel) Run() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go c.writePump()
}

func (c *WSChannel) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
			log.Printf("ws %s: read error: %v", c.id, err)
		}
		return nil, err
	}
	return data, nil
}

// Send queues data for the write pump without blocking. A full buffer
// counts as a failure so a slow consumer gets evicted instead of
// stalling a broadcast.
func (c *WSChannel) Send(data []byte) error {
	select {
	case <-c.done:
		return errChannelClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errChannelClosed
	default:
		return errChannelFull
	}
}

// Close signals the write pump to deliver a close frame and shut the
// connection down. Safe to call more than once; the first code wins.
func (c *WSChannel) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.code = code
		c.reason = reason
		close(c.done)
	})
}

func (c *WSChannel) ServerClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *WSChannel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(c.code, c.reason))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
