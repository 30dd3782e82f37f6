package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvu2703/Nemo-social-network/internal/core"
)

type fakeConn struct {
	frames []core.Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.full {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}

	r.Register("alice", "conn-1", c1, nil)
	r.Register("alice", "conn-2", c2, nil)
	// Re-registering the same ConnID is a no-op.
	r.Register("bob", "conn-1", &fakeConn{}, nil)

	assert.Equal(t, 2, r.ConnCount())
	assert.Equal(t, 1, r.UserCount())
	assert.True(t, r.IsOnline("alice"))
	assert.False(t, r.IsOnline("bob"))

	owner, ok := r.OwnerOf("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(owner))

	uid, last, ok := r.Unregister("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(uid))
	assert.False(t, last)
	assert.True(t, r.IsOnline("alice"))

	uid, last, ok = r.Unregister("conn-2")
	require.True(t, ok)
	assert.Equal(t, "alice", string(uid))
	assert.True(t, last)
	assert.False(t, r.IsOnline("alice"))

	_, _, ok = r.Unregister("conn-2")
	assert.False(t, ok)
}

func TestRegistryFanout(t *testing.T) {
	r := NewRegistry()
	ok1 := &fakeConn{}
	ok2 := &fakeConn{}
	slow := &fakeConn{full: true}

	r.Register("alice", "conn-1", ok1, nil)
	r.Register("alice", "conn-2", ok2, nil)
	r.Register("alice", "conn-3", slow, nil)

	sent, dropped := r.Fanout("alice", core.Frame(`{"type":"pong"}`))
	assert.Equal(t, 2, sent)
	require.Len(t, dropped, 1)
	assert.Equal(t, "conn-3", string(dropped[0]))
	assert.Len(t, ok1.frames, 1)
	assert.Len(t, ok2.frames, 1)

	sent, dropped = r.Fanout("nobody", core.Frame(`{}`))
	assert.Zero(t, sent)
	assert.Empty(t, dropped)
}

func TestRegistryShutdown(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	canceled := false

	r.Register("alice", "conn-1", c1, func() { canceled = true })
	r.Register("bob", "conn-2", c2, nil)

	r.Shutdown()

	assert.True(t, canceled)
	assert.True(t, c1.closed)
	assert.True(t, c2.closed)
	assert.Zero(t, r.ConnCount())
	assert.Zero(t, r.UserCount())
}

func TestRegistryCancelClosesConn(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	canceled := false
	r.Register("alice", "conn-1", c, func() { canceled = true })

	assert.True(t, r.Cancel("conn-1"))
	assert.True(t, canceled)
	// Closing the transport unblocks the reader so the disconnect path runs.
	assert.True(t, c.closed)
	assert.False(t, r.Cancel("unknown"))
}
