package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

// Relay authorizes and redirects one signaling payload. The payload is an
// opaque blob: the server stays a dumb pipe and never looks inside an SDP
// or a candidate.
func (o *Orchestrator) Relay(from, to domain.UserID, kind string, payload json.RawMessage) ([]Event, error) {
	view, ok := o.Calls.Between(from, to)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if err := o.Calls.Authorize(view.ID, from, to); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if !o.Registry.IsOnline(to) {
		return nil, domain.ErrPeerUnreachable
	}

	msg := domain.RelayMsg{Type: kind, From: from}
	switch kind {
	case domain.MsgOffer, domain.MsgAnswer:
		msg.SDP = payload
	case domain.MsgICECandidate:
		msg.Candidate = payload
	default:
		return nil, domain.ErrInvalidTransition
	}

	// A relayed answer means both ends finished negotiating; accepted
	// targets move to connected. Failures here are stale-state races.
	if kind == domain.MsgAnswer {
		for _, uid := range []domain.UserID{from, to} {
			if uid == view.Initiator {
				continue
			}
			if _, err := o.Calls.Transition(view.ID, uid, domain.StatusConnected); err != nil {
				log.Debug().Str("module", "orch").Err(err).Str("call_id", string(view.ID)).Str("user", string(uid)).Msg("mark connected")
			}
		}
	}

	return []Event{{To: to, Msg: msg}}, nil
}
