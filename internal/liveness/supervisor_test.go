package liveness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockConn struct {
	id string

	mu     sync.Mutex
	alive  bool
	pings  int
	closed bool
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) ClearAlive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.alive
	m.alive = false
	return prev
}

func (m *mockConn) Ping(deadline time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) pong() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alive = true
}

func (m *mockConn) state() (pings int, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pings, m.closed
}

func newTestSupervisor() *Supervisor {
	return New(time.Hour, time.Second, zap.NewNop().Sugar())
}

func TestSupervisor_ResponsiveConnSurvives(t *testing.T) {
	s := newTestSupervisor()
	c := &mockConn{id: "c1", alive: true}
	s.Track(c)

	s.sweep()
	pings, closed := c.state()
	assert.Equal(t, 1, pings)
	assert.False(t, closed)

	// probe reply arrives before the next sweep
	c.pong()
	s.sweep()
	pings, closed = c.state()
	assert.Equal(t, 2, pings)
	assert.False(t, closed)
}

func TestSupervisor_TwoMissedProbesTerminates(t *testing.T) {
	s := newTestSupervisor()
	c := &mockConn{id: "c1", alive: true}
	s.Track(c)

	// first sweep clears the flag and probes; no reply follows
	s.sweep()
	_, closed := c.state()
	require.False(t, closed)

	// second sweep finds the flag still down and force-closes
	s.sweep()
	pings, closed := c.state()
	assert.True(t, closed)
	assert.Equal(t, 1, pings)

	// the dead conn is no longer tracked
	s.sweep()
	pings, _ = c.state()
	assert.Equal(t, 1, pings)
}

func TestSupervisor_SweepsUnjoinedConnsToo(t *testing.T) {
	s := newTestSupervisor()
	// tracked connections need no room membership to be swept
	a := &mockConn{id: "a", alive: true}
	b := &mockConn{id: "b", alive: false}
	s.Track(a)
	s.Track(b)

	s.sweep()

	_, closedA := a.state()
	_, closedB := b.state()
	assert.False(t, closedA)
	assert.True(t, closedB)
}

func TestSupervisor_Untrack(t *testing.T) {
	s := newTestSupervisor()
	c := &mockConn{id: "c1", alive: false}
	s.Track(c)
	s.Untrack("c1")

	s.sweep()

	_, closed := c.state()
	assert.False(t, closed)
}

func TestSupervisor_StartStop(t *testing.T) {
	s := New(5*time.Millisecond, time.Second, zap.NewNop().Sugar())
	c := &mockConn{id: "c1", alive: true}
	s.Track(c)

	s.Start()
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	pings, _ := c.state()
	assert.Greater(t, pings, 0)
}
