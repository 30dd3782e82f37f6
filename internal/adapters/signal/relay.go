package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

// handleRelay forwards offer/answer/ice-candidate payloads between
// participants of the same session. SDP and candidates stay opaque blobs.
func (ctl *SignalWSController) handleRelay(
	uid domain.UserID,
	conn *WsSignalConn,
	kind string,
	data []byte,
) {
	type relayPayload struct {
		Type         string          `json:"type"`
		TargetUserID string          `json:"targetUserId"`
		SDP          json.RawMessage `json:"sdp"`
		Candidate    json.RawMessage `json:"candidate"`
	}
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad relay payload")
		ctl.sendError(conn, domain.CodeBadPayload, "", "")
		return
	}

	target, err := domain.ParseUserID(p.TargetUserID)
	if err != nil {
		ctl.sendError(conn, domain.CodeBadPayload, "", "")
		return
	}

	payload := p.SDP
	if kind == domain.MsgICECandidate {
		payload = p.Candidate
	}
	if len(payload) == 0 {
		ctl.sendError(conn, domain.CodeBadPayload, target, "")
		return
	}

	events, err := ctl.Orch.Relay(uid, target, kind, payload)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		log.Warn().Str("module", "signal").Str("kind", kind).Str("from", string(uid)).Str("target", string(target)).Msg("relay without session")
		ctl.sendError(conn, domain.CodeSessionNotFound, target, "")
		return
	case errors.Is(err, domain.ErrPeerUnreachable):
		// Tell the sender so the client can drop that branch of the call.
		ctl.sendError(conn, domain.CodePeerUnreachable, target, "")
		return
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("relay")
		return
	}
	ctl.Deliver(events)
}
