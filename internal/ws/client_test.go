package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient builds a Client without a real socket; Send and the liveness
// flag never touch the connection.
func testClient(buffer int) *Client {
	c := &Client{
		id:   "test",
		role: "receiver",
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
		log:  zap.NewNop().Sugar(),
	}
	c.alive.Store(true)
	return c
}

func TestClient_SendQueues(t *testing.T) {
	c := testClient(2)

	require.NoError(t, c.Send([]byte("one")))
	require.NoError(t, c.Send([]byte("two")))
	assert.Equal(t, []byte("one"), <-c.send)
}

func TestClient_SendBacklogged(t *testing.T) {
	c := testClient(1)

	require.NoError(t, c.Send([]byte("one")))
	err := c.Send([]byte("two"))
	assert.ErrorIs(t, err, ErrBacklogged)
}

func TestClient_SendAfterClose(t *testing.T) {
	c := testClient(4)
	close(c.done)

	err := c.Send([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_LivenessFlag(t *testing.T) {
	c := testClient(1)

	assert.True(t, c.ClearAlive())
	assert.False(t, c.ClearAlive())

	c.MarkAlive()
	assert.True(t, c.ClearAlive())
}
