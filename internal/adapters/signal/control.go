package signal

import (
	"time"

	"github.com/dkeye/Clubs/internal/core"
)

type pongPayload struct {
	Time int64 `json:"time"`
}

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, core.EventPong, pongPayload{Time: time.Now().UnixMilli()})
}
