package signal

import "github.com/dkeye/Clubs/internal/core"

// The negotiation blobs are relayed as received; the server never builds a
// peer connection of its own.

func (ctl *SignalWSController) handleOffer(sess core.Session, conn *WsSignalConn, p Offer) {
	if err := ctl.Orch.RelayOffer(sess.ID(), p.ClubID, p.Offer, p.TargetUserID); err != nil {
		ctl.sendError(conn, EventOffer, err)
	}
}

func (ctl *SignalWSController) handleAnswer(sess core.Session, conn *WsSignalConn, p Answer) {
	if err := ctl.Orch.RelayAnswer(sess.ID(), p.ClubID, p.Answer, p.TargetUserID); err != nil {
		ctl.sendError(conn, EventAnswer, err)
	}
}

func (ctl *SignalWSController) handleCandidate(sess core.Session, conn *WsSignalConn, p ICECandidate) {
	if err := ctl.Orch.RelayCandidate(sess.ID(), p.ClubID, p.Candidate, p.TargetUserID); err != nil {
		ctl.sendError(conn, EventCandidate, err)
	}
}
