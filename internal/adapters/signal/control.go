package signal

import (
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: domain.MsgPong,
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleWhoAmI(
	uid domain.UserID,
	conn *WsSignalConn,
) {
	views := ctl.Orch.Calls.With(uid)
	ids := make([]domain.CallID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	resp := struct {
		Type  string          `json:"type"`
		ID    domain.UserID   `json:"id"`
		Calls []domain.CallID `json:"calls"`
	}{
		Type:  domain.MsgWhoAmI,
		ID:    uid,
		Calls: ids,
	}
	ctl.sendJSON(conn, resp)
}
