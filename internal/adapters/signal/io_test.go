package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvu2703/Nemo-social-network/internal/app"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/calls"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

type slowConn struct {
	closed bool
}

func (c *slowConn) TrySend(core.Frame) error { return ErrBackpressure }
func (c *slowConn) Close()                   { c.closed = true }

func TestDeliverClosesSlowConsumer(t *testing.T) {
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Calls:    calls.NewTable(),
		Policy:   app.SimplePolicy{},
	}
	ctl := NewSignalWSController(o, nil, 8)

	slow := &slowConn{}
	canceled := false
	o.Registry.Register("alice", "conn-1", slow, func() { canceled = true })

	ctl.Deliver([]orch.Event{{To: "alice", Msg: domain.CallStateMsg{
		Type:   domain.MsgCallEnded,
		CallID: "c1",
	}}})

	// CloseConn tears the slow consumer down: pumps canceled, socket closed.
	assert.True(t, canceled)
	assert.True(t, slow.closed)
}
