package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hungryfaceai/webrtc-signaling-server/internal/events"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/metrics"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/presence"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/protocol"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/registry"
)

// Conn is what the router needs from a transport connection.
type Conn interface {
	registry.Conn
	Role() string
}

// Router classifies every inbound frame and decides fan-out: broadcast to the
// room minus the sender, broadcast to the whole room, or unicast to a named
// peer. All failure modes degrade to "nothing happens" for the offending
// client; there is no error channel in the protocol.
type Router struct {
	reg  *registry.Registry
	pres *presence.Store   // nil when presence mirroring is disabled
	pub  *events.Publisher // nil when lifecycle events are disabled
	log  *zap.SugaredLogger
}

func New(reg *registry.Registry, pres *presence.Store, pub *events.Publisher, log *zap.SugaredLogger) *Router {
	return &Router{reg: reg, pres: pres, pub: pub, log: log}
}

// HandleOpen runs once per accepted connection, before any frame is read. The
// hello frame tells the client its assigned id so it can reference itself in
// targeted messages.
func (rt *Router) HandleOpen(c Conn) {
	rt.send(c, protocol.Hello(c.ID()))
	rt.pub.Publish(context.Background(), events.Event{Event: events.Connected, ConnID: c.ID(), Role: c.Role()})
}

// HandleFrame dispatches one inbound text frame.
func (rt *Router) HandleFrame(c Conn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		metrics.FramesDiscarded.WithLabelValues("malformed").Inc()
		return
	}
	switch t := env.Type(); {
	case t == protocol.TypeJoin:
		rt.handleJoin(c, env)
	case protocol.Relayable(t):
		rt.relay(c, env)
	default:
		metrics.FramesDiscarded.WithLabelValues("unknown-type").Inc()
	}
}

func (rt *Router) handleJoin(c Conn, env protocol.Envelope) {
	roomID := strings.TrimSpace(env.Room())
	if roomID == "" {
		metrics.FramesDiscarded.WithLabelValues("empty-room").Inc()
		return
	}
	role := c.Role()
	if err := rt.reg.Join(c, roomID, role); err != nil {
		rt.log.Debugw("duplicate join ignored", "conn", c.ID(), "room", roomID)
		metrics.FramesDiscarded.WithLabelValues("duplicate-join").Inc()
		return
	}
	rt.log.Infow("peer joined room", "conn", c.ID(), "room", roomID, "role", role)

	members := rt.reg.Members(roomID)
	joinedFrame := protocol.PeerJoined(c.ID(), role)
	rosterFrame := protocol.Roster(rosterOf(members))
	for _, m := range members {
		if m.Conn.ID() != c.ID() {
			rt.send(m.Conn, joinedFrame)
		}
		rt.send(m.Conn, rosterFrame)
	}

	rooms, _ := rt.reg.Stats()
	metrics.ActiveRooms.Set(float64(rooms))
	rt.pres.MemberJoined(context.Background(), roomID, c.ID())
	rt.pub.Publish(context.Background(), events.Event{Event: events.Joined, ConnID: c.ID(), Room: roomID, Role: role})
}

func (rt *Router) relay(c Conn, env protocol.Envelope) {
	roomID, ok := rt.reg.Room(c)
	if !ok {
		rt.log.Debugw("relay before join dropped", "conn", c.ID(), "type", env.Type())
		metrics.FramesDiscarded.WithLabelValues("unjoined").Inc()
		return
	}
	out, err := env.WithFrom(c.ID())
	if err != nil {
		metrics.FramesDiscarded.WithLabelValues("malformed").Inc()
		return
	}

	if to := env.To(); to != "" {
		if to == c.ID() {
			metrics.FramesDiscarded.WithLabelValues("self-target").Inc()
			return
		}
		peer, ok := rt.reg.Find(roomID, to)
		if !ok {
			metrics.FramesDiscarded.WithLabelValues("unknown-peer").Inc()
			return
		}
		rt.send(peer, out)
		metrics.FramesRelayed.Inc()
		return
	}

	for _, m := range rt.reg.Members(roomID) {
		if m.Conn.ID() == c.ID() {
			continue
		}
		rt.send(m.Conn, out)
	}
	metrics.FramesRelayed.Inc()
}

// HandleClose runs exactly once per connection, after the transport session
// ends for any reason (client close, network loss, liveness timeout).
func (rt *Router) HandleClose(c Conn) {
	roomID, remaining, ok := rt.reg.Leave(c)
	if ok {
		if len(remaining) > 0 {
			leftFrame := protocol.PeerLeft(c.ID())
			rosterFrame := protocol.Roster(rosterOf(remaining))
			for _, m := range remaining {
				rt.send(m.Conn, leftFrame)
				rt.send(m.Conn, rosterFrame)
			}
		}
		rt.log.Infow("peer left room", "conn", c.ID(), "room", roomID)
		rooms, _ := rt.reg.Stats()
		metrics.ActiveRooms.Set(float64(rooms))
		rt.pres.MemberLeft(context.Background(), roomID, c.ID())
		rt.pub.Publish(context.Background(), events.Event{Event: events.Left, ConnID: c.ID(), Room: roomID})
	}
	rt.pub.Publish(context.Background(), events.Event{Event: events.Disconnected, ConnID: c.ID(), Room: roomID})
}

// send is best effort: a closed or backlogged peer just misses the frame.
func (rt *Router) send(c registry.Conn, frame []byte) {
	if err := c.Send(frame); err != nil {
		metrics.SendDrops.Inc()
	}
}

func rosterOf(members []registry.Member) []protocol.PeerInfo {
	peers := make([]protocol.PeerInfo, 0, len(members))
	for _, m := range members {
		peers = append(peers, protocol.PeerInfo{ID: m.Conn.ID(), Role: m.Role})
	}
	return peers
}
