package signal

import (
	"context"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/rs/zerolog/log"
)

const (
	rateLimitedMsg = "Too many messages, slow down"
	queueFullMsg   = "Too many pending messages"
)

func (ctl *SignalWSController) handleJoinClub(sess core.Session, conn *WsSignalConn, p JoinClub) {
	if err := ctl.Orch.JoinClub(sess.ID(), p.ClubID); err != nil {
		ctl.sendError(conn, EventJoinClub, err)
	}
}

func (ctl *SignalWSController) handleLeaveClub(sess core.Session, conn *WsSignalConn, p LeaveClub) {
	if err := ctl.Orch.LeaveClub(sess.ID(), p.ClubID); err != nil {
		ctl.sendError(conn, EventLeaveClub, err)
	}
}

// handleSendMessage moves persistence off the read pump. The store call
// keeps running after a disconnect so the message still reaches the room.
func (ctl *SignalWSController) handleSendMessage(ctx context.Context, sess core.Session, conn *WsSignalConn, p SendMessage) {
	if !ctl.Limiter.Allow(sess.ID()) {
		log.Warn().Str("module", "signal").Str("conn", string(sess.ID())).Msg("message rate limited")
		ctl.sendJSON(conn, core.EventMessageError, core.MessageErrorPayload{Error: rateLimitedMsg})
		return
	}

	base := context.WithoutCancel(ctx)
	ok := conn.enqueue(func() {
		tctx, cancel := context.WithTimeout(base, storeTimeout)
		defer cancel()
		// errors already reached the sender as message-error
		_, _ = ctl.Orch.SendMessage(tctx, sess, p.ClubID, p.Message, p.UserID)
	})
	if !ok {
		ctl.sendJSON(conn, core.EventMessageError, core.MessageErrorPayload{Error: queueFullMsg})
	}
}
