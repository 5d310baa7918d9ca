package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/hungryfaceai/webrtc-signaling-server/internal/liveness"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/metrics"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/protocol"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/router"
)

// Options bounds one websocket session.
type Options struct {
	WriteDeadline  time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

// Handler owns the websocket side of the relay: it accepts connections,
// assigns ids, and feeds every inbound frame to the router.
type Handler struct {
	router *router.Router
	sup    *liveness.Supervisor
	opts   Options
	log    *zap.SugaredLogger
}

func NewHandler(rt *router.Router, sup *liveness.Supervisor, opts Options, log *zap.SugaredLogger) *Handler {
	return &Handler{router: rt, sup: sup, opts: opts, log: log}
}

// Handle returns the connection callback mounted behind the fiber websocket
// upgrade middleware. The callback runs for the whole life of the session.
func (h *Handler) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		role := protocol.NormalizeRole(conn.Query("role"))
		c := newClient(conn, role, h.opts.SendBufferSize, h.log)

		metrics.ConnectionsTotal.Inc()
		metrics.ActiveConnections.Inc()
		h.log.Infow("connection accepted", "conn", c.ID(), "role", role)

		h.sup.Track(c)
		go c.writePump(h.opts.WriteDeadline)
		h.router.HandleOpen(c)

		conn.SetReadLimit(h.opts.MaxMessageSize)
		conn.SetPongHandler(func(string) error {
			c.MarkAlive()
			return nil
		})

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.TextMessage {
				continue
			}
			h.router.HandleFrame(c, data)
		}

		h.sup.Untrack(c.ID())
		c.Close()
		h.router.HandleClose(c)
		metrics.ActiveConnections.Dec()
		h.log.Infow("connection closed", "conn", c.ID())
	}
}
