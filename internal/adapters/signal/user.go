package signal

import (
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
)

type whoAmIPayload struct {
	ConnectionID domain.ConnID     `json:"connectionId"`
	UserID       string            `json:"userId,omitempty"`
	ClubRoom     domain.RoomName   `json:"clubRoom,omitempty"`
	Meetings     []domain.RoomName `json:"meetings"`
}

func (ctl *SignalWSController) handleWhoAmI(sess core.Session, conn *WsSignalConn) {
	id := sess.ID()
	resp := whoAmIPayload{
		ConnectionID: id,
		UserID:       sess.Meta().UserID,
		Meetings:     ctl.Orch.Registry.MeetingRoomsOf(id),
	}
	if room, ok := ctl.Orch.Registry.ClubRoomOf(id); ok {
		resp.ClubRoom = room
	}
	if resp.Meetings == nil {
		resp.Meetings = []domain.RoomName{}
	}
	ctl.sendJSON(conn, core.EventWhoAmI, resp)
}
