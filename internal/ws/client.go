package ws

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBacklogged = errors.New("send buffer full")
)

// Client is one accepted websocket session. It owns the socket; the registry
// and the liveness supervisor hold non-owning references keyed by id.
type Client struct {
	id   string
	role string
	conn *websocket.Conn
	send chan []byte
	log  *zap.SugaredLogger

	alive     atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, role string, sendBuffer int, log *zap.SugaredLogger) *Client {
	c := &Client{
		id:   uuid.New().String(),
		role: role,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
	c.alive.Store(true)
	return c
}

func (c *Client) ID() string   { return c.id }
func (c *Client) Role() string { return c.role }

// Send queues a frame for the writer goroutine. A closed or backlogged client
// drops the frame; delivery is best effort by design.
func (c *Client) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBacklogged
	}
}

// writePump is the only goroutine writing data frames to the socket.
func (c *Client) writePump(writeDeadline time.Duration) {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debugw("write failed", "conn", c.id, "error", err)
				return
			}
		}
	}
}

// Ping sends a liveness probe. WriteControl is safe to call concurrently with
// the writer goroutine.
func (c *Client) Ping(deadline time.Duration) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(deadline))
}

// MarkAlive is called by the pong handler on every probe reply.
func (c *Client) MarkAlive() { c.alive.Store(true) }

// ClearAlive lowers the liveness flag and reports the previous value.
func (c *Client) ClearAlive() bool { return c.alive.Swap(false) }

// Close force-terminates the transport session. The reader loop then unwinds
// through the ordinary close path.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
