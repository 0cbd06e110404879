package orch

import (
	"errors"

	"github.com/dkeye/Clubs/internal/app"
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownConn    = errors.New("unknown connection")
	ErrTargetRequired = errors.New("target connection is required")
	ErrNoStore        = errors.New("chat store is not configured")
)

// Orchestrator is the session level protocol logic: club chat and meeting
// negotiation relay on top of the Registry and the Broadcaster.
type Orchestrator struct {
	Registry    *app.Registry
	Broadcaster *app.Broadcaster
	Chat        core.ChatStore
	Users       core.UserDirectory
}

func New(reg *app.Registry, policy app.Policy, chat core.ChatStore, users core.UserDirectory) *Orchestrator {
	return &Orchestrator{
		Registry:    reg,
		Broadcaster: app.NewBroadcaster(reg, policy),
		Chat:        chat,
		Users:       users,
	}
}

func (o *Orchestrator) OnConnect(sess core.Session) {
	o.Registry.Bind(sess)
}

// OnDisconnect tells every meeting the connection was in that it left, then
// purges it from the registry. Messages still being persisted for this
// connection are unaffected and broadcast to whoever is in the room then.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	for _, room := range o.Registry.MeetingRoomsOf(id) {
		o.Broadcaster.Broadcast(room, core.EventUserLeftMeeting, core.MeetingPeerPayload{UserID: id}, id)
	}
	rooms := o.Registry.RemoveConnection(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Int("rooms", len(rooms)).Msg("disconnected")
}

// Rooms lists the active rooms.
func (o *Orchestrator) Rooms() []core.RoomInfo {
	return o.Registry.Rooms()
}
