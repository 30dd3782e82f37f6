package app

import (
	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	CloseConn
)

// Policy decides what to do with a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(uid domain.UserID, cid core.ConnID) BackpressureAction
}

// SimplePolicy closes slow consumers: a signaling channel that cannot drain
// a 32-frame buffer is not going to complete a handshake anyway, and closing
// funnels into the regular disconnect cleanup.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(uid domain.UserID, cid core.ConnID) BackpressureAction {
	return CloseConn
}
