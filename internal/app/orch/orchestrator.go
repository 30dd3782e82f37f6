// Package orch coordinates call lifecycle and signal relay between the
// connection registry and the call-session table. Methods return the
// notifications to emit as data; the transport adapter executes them. That
// keeps every decision testable without a socket in sight.
package orch

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/app"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/calls"
	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

// Event is one outbound notification: deliver Msg to every live connection
// of To.
type Event struct {
	To  domain.UserID
	Msg any
}

type Orchestrator struct {
	Registry *app.Registry
	Calls    *calls.Table
	Policy   app.Policy

	// RingTimeout bounds how long a target may stay invited; zero disables
	// the reaper and keeps unanswered invitations forever.
	RingTimeout  time.Duration
	ReapInterval time.Duration

	// Deliver executes events produced outside a request context (reaper,
	// shutdown). Wired to the signal adapter at startup.
	Deliver func([]Event)
}

// StartCall creates a session and invites every target. Targets with no
// live connection are marked left immediately and the initiator is told the
// branch is unreachable instead of leaving it ringing forever.
func (o *Orchestrator) StartCall(initiator domain.UserID, targets []domain.UserID) (calls.View, []Event, error) {
	view, err := o.Calls.Create(initiator, targets)
	if err != nil {
		return calls.View{}, nil, err
	}

	participants := append([]domain.UserID{initiator}, targets...)
	var events []Event
	for _, target := range targets {
		if o.Registry.IsOnline(target) {
			events = append(events, Event{To: target, Msg: domain.IncomingCallMsg{
				Type:         domain.MsgIncomingCall,
				From:         initiator,
				CallID:       view.ID,
				Participants: participants,
			}})
			continue
		}
		next, err := o.Calls.Transition(view.ID, target, domain.StatusLeft)
		if err != nil {
			log.Warn().Str("module", "orch").Err(err).Str("call_id", string(view.ID)).Str("target", string(target)).Msg("mark unreachable target")
			continue
		}
		view = next
		events = append(events, Event{To: initiator, Msg: domain.ErrorMsg{
			Type:   domain.MsgError,
			Error:  domain.CodePeerUnreachable,
			Target: target,
			CallID: view.ID,
		}})
	}

	if view.Status == domain.CallEnded {
		o.Calls.Remove(view.ID)
		events = append(events, Event{To: initiator, Msg: domain.CallStateMsg{
			Type:   domain.MsgCallEnded,
			CallID: view.ID,
		}})
	}
	return view, events, nil
}

// Accept moves a target from invited to accepted and tells the remaining
// participants, the initiator first among them, to begin offer negotiation.
func (o *Orchestrator) Accept(uid domain.UserID, id domain.CallID) ([]Event, error) {
	view, err := o.Calls.Transition(id, uid, domain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return notifyOthers(view, uid, domain.MsgCallAccepted), nil
}

// Reject is terminal for the target; the session ends once nobody is left
// ringing or connected.
func (o *Orchestrator) Reject(uid domain.UserID, id domain.CallID) ([]Event, error) {
	view, err := o.Calls.Transition(id, uid, domain.StatusRejected)
	if err != nil {
		return nil, err
	}
	events := notifyOthers(view, uid, domain.MsgCallRejected)
	return append(events, o.finishIfEnded(view, uid)...), nil
}

// End transitions uid to left. Remaining participants always hear callEnded
// from uid so their clients can tear down that peer connection; the session
// itself is removed only once it is terminal.
func (o *Orchestrator) End(uid domain.UserID, id domain.CallID) ([]Event, error) {
	view, err := o.Calls.Transition(id, uid, domain.StatusLeft)
	if err != nil {
		return nil, err
	}
	events := notifyOthers(view, uid, domain.MsgCallEnded)
	return append(events, o.finishIfEnded(view, uid)...), nil
}

// OnDisconnect is the transport-drop path. Only the owner's last live
// connection ends their calls: another open tab keeps every session alive.
func (o *Orchestrator) OnDisconnect(cid core.ConnID) []Event {
	uid, last, ok := o.Registry.Unregister(cid)
	if !ok || !last {
		return nil
	}
	var events []Event
	for _, view := range o.Calls.With(uid) {
		evs, err := o.End(uid, view.ID)
		if err != nil {
			// Benign: the session may have ended concurrently.
			log.Debug().Str("module", "orch").Err(err).Str("call_id", string(view.ID)).Str("user", string(uid)).Msg("disconnect cleanup")
			continue
		}
		events = append(events, evs...)
	}
	return events
}

// finishIfEnded removes a terminal session and closes the loop for the
// initiator when somebody else's transition ended the call. Targets never
// outlive the session without hearing callEnded from notifyOthers first, so
// the initiator is the only one left to tell.
func (o *Orchestrator) finishIfEnded(view calls.View, actor domain.UserID) []Event {
	if view.Status != domain.CallEnded {
		return nil
	}
	o.Calls.Remove(view.ID)
	if actor == view.Initiator {
		return nil
	}
	return []Event{{To: view.Initiator, Msg: domain.CallStateMsg{
		Type:   domain.MsgCallEnded,
		CallID: view.ID,
	}}}
}

// notifyOthers fans a state announcement from uid to every participant who
// has not reached a terminal state, the initiator included. The session-level
// status is deliberately ignored here: when uid's own transition ended the
// call, the others still need to hear about it.
func notifyOthers(view calls.View, uid domain.UserID, msgType string) []Event {
	recipients := make([]domain.UserID, 0, len(view.Targets)+1)
	recipients = append(recipients, view.Initiator)
	for _, tgt := range view.Targets {
		if !tgt.Status.Terminal() {
			recipients = append(recipients, tgt.User)
		}
	}
	var events []Event
	for _, p := range recipients {
		if p == uid {
			continue
		}
		events = append(events, Event{To: p, Msg: domain.CallStateMsg{
			Type:   msgType,
			From:   uid,
			CallID: view.ID,
		}})
	}
	return events
}

// ResolveCall finds the session a lifecycle message refers to when the
// client names a peer instead of a call id (the browser client does both).
func (o *Orchestrator) ResolveCall(uid domain.UserID, id domain.CallID, peer domain.UserID) (domain.CallID, error) {
	if id != "" {
		if _, ok := o.Calls.Get(id); !ok {
			return "", domain.ErrSessionNotFound
		}
		return id, nil
	}
	if peer != "" {
		if view, ok := o.Calls.Between(uid, peer); ok {
			return view.ID, nil
		}
		return "", domain.ErrSessionNotFound
	}
	return "", domain.ErrSessionNotFound
}

// EndAll ends every active session of uid; the browser's bare endCall
// carries no session id.
func (o *Orchestrator) EndAll(uid domain.UserID) []Event {
	var events []Event
	for _, view := range o.Calls.With(uid) {
		evs, err := o.End(uid, view.ID)
		if err != nil {
			continue
		}
		events = append(events, evs...)
	}
	return events
}

// IsBenign reports validation errors that are logged and ignored at the
// protocol level because they come from ordinary races, not broken clients.
func IsBenign(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrSessionNotFound)
}
