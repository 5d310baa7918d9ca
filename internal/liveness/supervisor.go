package liveness

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hungryfaceai/webrtc-signaling-server/internal/metrics"
)

// Conn is the probe surface the supervisor needs from a connection.
type Conn interface {
	ID() string
	// ClearAlive lowers the liveness flag and reports the previous value.
	ClearAlive() bool
	Ping(deadline time.Duration) error
	Close()
}

// Supervisor sweeps all open connections on a fixed interval. A connection
// that has not replied to the previous sweep's probe is force-closed, which
// unwinds through the ordinary close path and cleans up the registry. This is
// the only mechanism reclaiming connections whose transport never delivered
// an explicit close event.
//
// The supervisor tracks every accepted connection itself, joined or not; the
// room registry only knows about joined ones.
type Supervisor struct {
	interval      time.Duration
	probeDeadline time.Duration
	log           *zap.SugaredLogger

	mu    sync.Mutex
	conns map[string]Conn

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(interval, probeDeadline time.Duration, log *zap.SugaredLogger) *Supervisor {
	return &Supervisor{
		interval:      interval,
		probeDeadline: probeDeadline,
		log:           log,
		conns:         make(map[string]Conn),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Track registers an accepted connection for sweeping.
func (s *Supervisor) Track(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.ID()] = c
}

// Untrack removes a connection, normally from its close path.
func (s *Supervisor) Untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

// Start launches the sweep loop. One goroutine, so sweeps never overlap.
func (s *Supervisor) Start() {
	go s.run()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Supervisor) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Supervisor) sweep() {
	for _, c := range s.snapshot() {
		if !c.ClearAlive() {
			s.log.Infow("liveness timeout, closing connection", "conn", c.ID())
			metrics.LivenessTimeouts.Inc()
			c.Close()
			s.Untrack(c.ID())
			continue
		}
		if err := c.Ping(s.probeDeadline); err != nil {
			// probe could not be written; the next sweep reclaims the conn
			s.log.Debugw("liveness probe failed", "conn", c.ID(), "error", err)
		}
	}
}

func (s *Supervisor) snapshot() []Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conn, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}
