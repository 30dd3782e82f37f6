package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

func (ctl *SignalWSController) handleStartCall(
	uid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type startPayload struct {
		Type          string   `json:"type"`
		TargetUserIDs []string `json:"targetUserIds"`
	}
	var p startPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad startCall payload")
		ctl.sendError(conn, domain.CodeBadPayload, "", "")
		return
	}

	if ctl.Limiter != nil && !ctl.Limiter.Allow(uid) {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Msg("startCall rate limited")
		ctl.sendError(conn, domain.CodeRateLimited, "", "")
		return
	}

	targets := make([]domain.UserID, 0, len(p.TargetUserIDs))
	for _, raw := range p.TargetUserIDs {
		t, err := domain.ParseUserID(raw)
		if err != nil {
			ctl.sendError(conn, domain.CodeInvalidTargetSet, "", "")
			return
		}
		targets = append(targets, t)
	}

	view, events, err := ctl.Orch.StartCall(uid, targets)
	if err != nil {
		ctl.sendError(conn, domain.CodeInvalidTargetSet, "", "")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("call_id", string(view.ID)).Int("targets", len(targets)).Msg("startCall")
	ctl.Deliver(events)
}

func (ctl *SignalWSController) handleCallAccepted(
	uid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	ctl.handleAnswerCall(uid, conn, data, ctl.Orch.Accept)
}

func (ctl *SignalWSController) handleCallRejected(
	uid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	ctl.handleAnswerCall(uid, conn, data, ctl.Orch.Reject)
}

// handleAnswerCall covers callAccepted and callRejected: both address the
// session by call id or by peer, and both ignore stale-session races.
func (ctl *SignalWSController) handleAnswerCall(
	uid domain.UserID,
	conn *WsSignalConn,
	data []byte,
	apply func(domain.UserID, domain.CallID) ([]orch.Event, error),
) {
	type answerPayload struct {
		Type         string `json:"type"`
		CallID       string `json:"callId"`
		TargetUserID string `json:"targetUserId"`
	}
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call answer payload")
		ctl.sendError(conn, domain.CodeBadPayload, "", "")
		return
	}

	id, err := ctl.Orch.ResolveCall(uid, domain.CallID(p.CallID), domain.UserID(p.TargetUserID))
	if err != nil {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Str("call_id", p.CallID).Msg("call answer for unknown session")
		return
	}

	events, err := apply(uid, id)
	if err != nil {
		if orch.IsBenign(err) {
			log.Debug().Err(err).Str("module", "signal").Str("call_id", string(id)).Msg("stale call answer")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("call_id", string(id)).Msg("call answer")
		return
	}
	ctl.Deliver(events)
}

func (ctl *SignalWSController) handleEndCall(
	uid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type endPayload struct {
		Type   string `json:"type"`
		CallID string `json:"callId"`
	}
	var p endPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad endCall payload")
		ctl.sendError(conn, domain.CodeBadPayload, "", "")
		return
	}

	// The browser's endCall carries no session id: end everything.
	if p.CallID == "" {
		ctl.Deliver(ctl.Orch.EndAll(uid))
		return
	}

	events, err := ctl.Orch.End(uid, domain.CallID(p.CallID))
	if err != nil {
		if errors.Is(err, domain.ErrNotParticipant) {
			ctl.sendError(conn, domain.CodeSessionNotFound, "", domain.CallID(p.CallID))
			return
		}
		log.Debug().Err(err).Str("module", "signal").Str("call_id", p.CallID).Msg("stale endCall")
		return
	}
	ctl.Deliver(events)
}
