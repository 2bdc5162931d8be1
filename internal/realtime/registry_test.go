package realtime

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterEvictsPreviousChannel(t *testing.T) {
	r := NewRegistry("test")

	first := newFakeConn()
	second := newFakeConn()

	r.Register(1, 10, first)
	r.Register(1, 10, second)

	closed, code, reason := first.closedWith()
	assert.True(t, closed)
	assert.Equal(t, websocket.CloseNormalClosure, code)
	assert.Equal(t, "replaced by a newer connection", reason)

	assert.True(t, r.IsRegistered(1, 10))
	assert.Equal(t, 1, r.Count(1))
}

func TestRegistry_UnregisterIgnoresStaleChannel(t *testing.T) {
	r := NewRegistry("test")

	stale := newFakeConn()
	current := newFakeConn()

	r.Register(1, 10, stale)
	r.Register(1, 10, current)

	// The replaced session cleans up after itself, but its channel no
	// longer owns the slot.
	r.Unregister(1, 10, stale)
	assert.True(t, r.IsRegistered(1, 10))

	r.Unregister(1, 10, current)
	assert.False(t, r.IsRegistered(1, 10))
	assert.Equal(t, 0, r.Count(1))
}

func TestRegistry_BroadcastExceptSkipsOriginator(t *testing.T) {
	r := NewRegistry("test")

	a := newFakeConn()
	b := newFakeConn()
	c := newFakeConn()
	r.Register(1, 10, a)
	r.Register(1, 20, b)
	r.Register(1, 30, c)

	r.BroadcastExcept(1, 20, []byte("hello"))

	assert.Len(t, a.sentMessages(), 1)
	assert.Len(t, b.sentMessages(), 0)
	assert.Len(t, c.sentMessages(), 1)
}

func TestRegistry_BroadcastEvictsFailingChannel(t *testing.T) {
	r := NewRegistry("test")

	healthy := newFakeConn()
	broken := newFakeConn()
	broken.failSend = true

	r.Register(1, 10, healthy)
	r.Register(1, 20, broken)

	r.Broadcast(1, []byte("hello"))

	assert.Len(t, healthy.sentMessages(), 1)
	assert.False(t, r.IsRegistered(1, 20))

	closed, code, _ := broken.closedWith()
	assert.True(t, closed)
	assert.Equal(t, websocket.CloseGoingAway, code)

	// The healthy channel is untouched by the eviction.
	assert.True(t, r.IsRegistered(1, 10))
}

func TestRegistry_SendToTargetsOneUser(t *testing.T) {
	r := NewRegistry("test")

	a := newFakeConn()
	b := newFakeConn()
	r.Register(1, 10, a)
	r.Register(1, 20, b)

	r.SendTo(1, 10, []byte("direct"))
	r.SendTo(1, 99, []byte("nobody")) // absent user, dropped

	assert.Len(t, a.sentMessages(), 1)
	assert.Len(t, b.sentMessages(), 0)
}

func TestRegistry_RoomsAreIsolated(t *testing.T) {
	r := NewRegistry("test")

	a := newFakeConn()
	b := newFakeConn()
	r.Register(1, 10, a)
	r.Register(2, 10, b)

	r.Broadcast(1, []byte("room one"))

	assert.Len(t, a.sentMessages(), 1)
	assert.Len(t, b.sentMessages(), 0)
}
