package signal

import "github.com/dkeye/Clubs/internal/core"

func (ctl *SignalWSController) handleStartMeeting(sess core.Session, conn *WsSignalConn, p StartMeeting) {
	if err := ctl.Orch.StartMeeting(sess.ID(), p.ClubID, p.MeetingID); err != nil {
		ctl.sendError(conn, EventStartMeeting, err)
	}
}

func (ctl *SignalWSController) handleJoinMeeting(sess core.Session, conn *WsSignalConn, p JoinMeeting) {
	if err := ctl.Orch.JoinMeeting(sess.ID(), p.ClubID, p.MeetingID); err != nil {
		ctl.sendError(conn, EventJoinMeeting, err)
	}
}

func (ctl *SignalWSController) handleLeaveMeeting(sess core.Session, conn *WsSignalConn, p LeaveMeeting) {
	if err := ctl.Orch.LeaveMeeting(sess.ID(), p.MeetingID); err != nil {
		ctl.sendError(conn, EventLeaveMeeting, err)
	}
}
