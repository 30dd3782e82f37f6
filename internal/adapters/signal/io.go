package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/app"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump processes frames strictly in arrival order; combined with the
// single writePump per connection that preserves per-pair FIFO, so an
// answer can never overtake its offer through the relay.
func (ctl *SignalWSController) readPump(ctx context.Context, uid domain.UserID, cid core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		ctl.Deliver(ctl.Orch.OnDisconnect(cid))
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(uid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleFrame(uid domain.UserID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, domain.CodeBadPayload, "", "")
		return
	}

	switch env.Type {
	case domain.MsgStartCall:
		ctl.handleStartCall(uid, c, data)
	case domain.MsgOffer, domain.MsgAnswer, domain.MsgICECandidate:
		ctl.handleRelay(uid, c, env.Type, data)
	case domain.MsgCallAccepted:
		ctl.handleCallAccepted(uid, c, data)
	case domain.MsgCallRejected:
		ctl.handleCallRejected(uid, c, data)
	case domain.MsgEndCall:
		ctl.handleEndCall(uid, c, data)
	case domain.MsgPing:
		ctl.handlePing(c)
	case domain.MsgWhoAmI:
		ctl.handleWhoAmI(uid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, code string, target domain.UserID, callID domain.CallID) {
	ctl.sendJSON(c, domain.ErrorMsg{
		Type:   domain.MsgError,
		Error:  code,
		Target: target,
		CallID: callID,
	})
}

// Deliver fans each event out to every live connection of its recipient.
// Zero deliveries means the peer vanished between check and send, which is
// a recoverable race, not an invariant violation.
func (ctl *SignalWSController) Deliver(events []orch.Event) {
	for _, ev := range events {
		b, err := json.Marshal(ev.Msg)
		if err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("deliver marshal")
			continue
		}
		sent, dropped := ctl.Orch.Registry.Fanout(ev.To, b)
		if sent == 0 && len(dropped) == 0 {
			log.Debug().Str("module", "signal").Str("user", string(ev.To)).Msg("deliver: no live connections")
		}
		for _, cid := range dropped {
			if ctl.Orch.Policy == nil {
				continue
			}
			switch ctl.Orch.Policy.OnBackPressure(ev.To, cid) {
			case app.CloseConn:
				log.Warn().Str("module", "signal").Str("cid", string(cid)).Msg("closing slow consumer")
				ctl.Orch.Registry.Cancel(cid)
			case app.DropFrame, app.NoAction:
			}
		}
	}
}
