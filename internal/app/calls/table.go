package calls

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

// Table is the process-wide record of active call sessions. All state is
// rebuilt from scratch on restart: a call that outlives the server has no
// meaningful continuation.
type Table struct {
	mu       sync.RWMutex
	sessions map[domain.CallID]*session
}

func NewTable() *Table {
	return &Table{sessions: make(map[domain.CallID]*session)}
}

// Create validates the target set and registers a new ringing session with
// every target invited.
func (t *Table) Create(initiator domain.UserID, targets []domain.UserID) (View, error) {
	if err := domain.ValidateTargets(initiator, targets); err != nil {
		return View{}, err
	}
	s := newSession(initiator, targets)
	t.mu.Lock()
	t.sessions[s.id] = s
	t.mu.Unlock()
	log.Info().Str("module", "calls").Str("call_id", string(s.id)).Str("initiator", string(initiator)).Int("targets", len(targets)).Msg("session created")
	return s.view(), nil
}

// Transition applies a participant status change and returns the resulting
// snapshot. Illegal transitions leave the session untouched.
func (t *Table) Transition(id domain.CallID, uid domain.UserID, next domain.ParticipantStatus) (View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return View{}, domain.ErrSessionNotFound
	}
	if err := s.transition(uid, next); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (t *Table) Get(id domain.CallID) (View, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return View{}, false
	}
	return s.view(), true
}

// Participants lists identities in non-terminal status for the session.
func (t *Table) Participants(id domain.CallID) ([]domain.UserID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.participants(), nil
}

// Authorize verifies that both identities are current participants of the
// session; relay messages are forwarded only after this check.
func (t *Table) Authorize(id domain.CallID, a, b domain.UserID) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if !s.isParticipant(a) || !s.isParticipant(b) {
		return domain.ErrNotParticipant
	}
	return nil
}

// Between finds the most recent live session linking two identities. Used
// when a client addresses a peer without naming the session.
func (t *Table) Between(a, b domain.UserID) (View, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var best *session
	for _, s := range t.sessions {
		if !s.isParticipant(a) || !s.isParticipant(b) {
			continue
		}
		if best == nil || s.createdAt.After(best.createdAt) {
			best = s
		}
	}
	if best == nil {
		return View{}, false
	}
	return best.view(), true
}

// With returns snapshots of every session in which uid is a non-terminal
// participant.
func (t *Table) With(uid domain.UserID) []View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []View
	for _, s := range t.sessions {
		if s.isParticipant(uid) {
			out = append(out, s.view())
		}
	}
	return out
}

func (t *Table) List() []View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]View, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s.view())
	}
	return out
}

// Invite identifies one target still ringing in one session.
type Invite struct {
	CallID    domain.CallID
	Initiator domain.UserID
	Target    domain.UserID
}

// StaleInvites lists targets still invited in sessions created before the
// cutoff. Invitations go out at creation time, so session age bounds ring
// time.
func (t *Table) StaleInvites(cutoff time.Time) []Invite {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Invite
	for _, s := range t.sessions {
		if s.createdAt.After(cutoff) {
			continue
		}
		for _, uid := range s.order {
			if s.targets[uid] == domain.StatusInvited {
				out = append(out, Invite{CallID: s.id, Initiator: s.initiator, Target: uid})
			}
		}
	}
	return out
}

func (t *Table) Remove(id domain.CallID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[id]; ok {
		delete(t.sessions, id)
		log.Info().Str("module", "calls").Str("call_id", string(id)).Msg("session removed")
	}
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Clear drops every session; used on shutdown.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.sessions {
		delete(t.sessions, id)
	}
}
