// Package calls holds the in-memory call-session table and the per-target
// state machine. Sessions are mutated only through the Table so every
// transition happens under one lock.
package calls

import (
	"time"

	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

// legal enumerates the allowed per-target transitions:
// invited -> accepted -> connected -> left, invited -> rejected,
// and any non-terminal state -> left.
var legal = map[domain.ParticipantStatus][]domain.ParticipantStatus{
	domain.StatusInvited:   {domain.StatusAccepted, domain.StatusRejected, domain.StatusLeft},
	domain.StatusAccepted:  {domain.StatusConnected, domain.StatusLeft},
	domain.StatusConnected: {domain.StatusLeft},
}

func canTransition(from, to domain.ParticipantStatus) bool {
	for _, next := range legal[from] {
		if next == to {
			return true
		}
	}
	return false
}

type session struct {
	id        domain.CallID
	initiator domain.UserID
	createdAt time.Time

	// order preserves the target list as requested; targets holds status.
	order   []domain.UserID
	targets map[domain.UserID]domain.ParticipantStatus

	initiatorLeft bool
}

func newSession(initiator domain.UserID, targets []domain.UserID) *session {
	s := &session{
		id:        domain.NewCallID(),
		initiator: initiator,
		createdAt: time.Now(),
		order:     make([]domain.UserID, 0, len(targets)),
		targets:   make(map[domain.UserID]domain.ParticipantStatus, len(targets)),
	}
	for _, t := range targets {
		s.order = append(s.order, t)
		s.targets[t] = domain.StatusInvited
	}
	return s
}

// transition applies one status change. Transitions on an ended session are
// rejected: a late accept after teardown is a benign race, not a crash.
func (s *session) transition(uid domain.UserID, next domain.ParticipantStatus) error {
	if s.status() == domain.CallEnded {
		return domain.ErrInvalidTransition
	}
	if uid == s.initiator {
		if next != domain.StatusLeft || s.initiatorLeft {
			return domain.ErrInvalidTransition
		}
		s.initiatorLeft = true
		return nil
	}
	cur, ok := s.targets[uid]
	if !ok {
		return domain.ErrNotParticipant
	}
	if !canTransition(cur, next) {
		return domain.ErrInvalidTransition
	}
	s.targets[uid] = next
	return nil
}

// status derives the session-level state: ended once the initiator left or
// every target is terminal, active once somebody accepted, ringing before.
func (s *session) status() domain.CallStatus {
	if s.initiatorLeft {
		return domain.CallEnded
	}
	allTerminal := true
	anyAccepted := false
	for _, st := range s.targets {
		if !st.Terminal() {
			allTerminal = false
		}
		if st == domain.StatusAccepted || st == domain.StatusConnected {
			anyAccepted = true
		}
	}
	switch {
	case allTerminal:
		return domain.CallEnded
	case anyAccepted:
		return domain.CallActive
	default:
		return domain.CallRinging
	}
}

// participants returns every identity still in a non-terminal state,
// initiator included.
func (s *session) participants() []domain.UserID {
	out := make([]domain.UserID, 0, len(s.order)+1)
	if !s.initiatorLeft {
		out = append(out, s.initiator)
	}
	for _, uid := range s.order {
		if !s.targets[uid].Terminal() {
			out = append(out, uid)
		}
	}
	return out
}

func (s *session) isParticipant(uid domain.UserID) bool {
	if uid == s.initiator {
		return !s.initiatorLeft
	}
	st, ok := s.targets[uid]
	return ok && !st.Terminal()
}

// Target is a read-only per-target view.
type Target struct {
	User   domain.UserID            `json:"user"`
	Status domain.ParticipantStatus `json:"status"`
}

// View is an immutable snapshot handed out of the table.
type View struct {
	ID        domain.CallID     `json:"id"`
	Initiator domain.UserID     `json:"initiator"`
	Targets   []Target          `json:"targets"`
	Status    domain.CallStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (s *session) view() View {
	v := View{
		ID:        s.id,
		Initiator: s.initiator,
		Targets:   make([]Target, 0, len(s.order)),
		Status:    s.status(),
		CreatedAt: s.createdAt,
	}
	for _, uid := range s.order {
		v.Targets = append(v.Targets, Target{User: uid, Status: s.targets[uid]})
	}
	return v
}

// Participants of a snapshot, same rule as the live session.
func (v View) Participants() []domain.UserID {
	out := make([]domain.UserID, 0, len(v.Targets)+1)
	if v.Status != domain.CallEnded {
		out = append(out, v.Initiator)
	}
	for _, t := range v.Targets {
		if !t.Status.Terminal() {
			out = append(out, t.User)
		}
	}
	return out
}
