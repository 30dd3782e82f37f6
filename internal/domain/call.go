package domain

import (
	"errors"

	"github.com/google/uuid"
)

// MaxCallTargets caps the non-initiator side of a group call.
const MaxCallTargets = 5

var (
	ErrInvalidTargetSet  = errors.New("invalid target set")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotParticipant    = errors.New("not a participant")
	ErrPeerUnreachable   = errors.New("peer unreachable")
)

type CallID string

func NewCallID() CallID {
	return CallID(uuid.NewString())
}

func (id CallID) String() string { return string(id) }

// ParticipantStatus is the per-target state:
// invited -> accepted -> connected -> left, invited -> rejected,
// and any non-terminal state -> left.
type ParticipantStatus string

const (
	StatusInvited   ParticipantStatus = "invited"
	StatusAccepted  ParticipantStatus = "accepted"
	StatusConnected ParticipantStatus = "connected"
	StatusRejected  ParticipantStatus = "rejected"
	StatusLeft      ParticipantStatus = "left"
)

// Terminal reports whether a participant can no longer change state.
func (s ParticipantStatus) Terminal() bool {
	return s == StatusRejected || s == StatusLeft
}

// CallStatus is derived from participant statuses, never stored.
type CallStatus string

const (
	CallRinging CallStatus = "ringing"
	CallActive  CallStatus = "active"
	CallEnded   CallStatus = "ended"
)

// ValidateTargets enforces the start-call constraints: non-empty, no
// self-target, no duplicates, at most MaxCallTargets entries.
func ValidateTargets(initiator UserID, targets []UserID) error {
	if len(targets) == 0 {
		return ErrInvalidTargetSet
	}
	if len(targets) > MaxCallTargets {
		return ErrInvalidTargetSet
	}
	seen := make(map[UserID]struct{}, len(targets))
	for _, t := range targets {
		if t == initiator {
			return ErrInvalidTargetSet
		}
		if _, dup := seen[t]; dup {
			return ErrInvalidTargetSet
		}
		seen[t] = struct{}{}
	}
	return nil
}
