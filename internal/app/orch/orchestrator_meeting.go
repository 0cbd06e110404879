package orch

import (
	"encoding/json"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/rs/zerolog/log"
)

// StartMeeting announces a meeting to the other members of the club room.
// The starter is not joined to the meeting; it calls JoinMeeting itself.
func (o *Orchestrator) StartMeeting(id domain.ConnID, clubID, meetingID string) error {
	if err := validateKeys(clubID, meetingID); err != nil {
		return err
	}
	res := o.Broadcaster.Broadcast(domain.ClubRoom(clubID), core.EventMeetingStarted, core.MeetingStartedPayload{
		MeetingID: meetingID,
		StartedBy: id,
	}, id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("club", clubID).Str("meeting", meetingID).Int("sent_to", res.SendTo).Msg("meeting started")
	return nil
}

// JoinMeeting adds the connection to the meeting room and tells the members
// already there. A repeated join changes nothing and announces nothing.
func (o *Orchestrator) JoinMeeting(id domain.ConnID, clubID, meetingID string) error {
	if err := validateKeys(clubID, meetingID); err != nil {
		return err
	}
	room := domain.MeetingRoom(meetingID)
	if _, ok := o.Registry.Session(id); !ok {
		return ErrUnknownConn
	}
	if !o.Registry.Join(id, room) {
		return nil
	}
	o.Broadcaster.Broadcast(room, core.EventUserJoinedMeeting, core.MeetingPeerPayload{UserID: id}, id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("club", clubID).Str("meeting", meetingID).Msg("joined meeting")
	return nil
}

// LeaveMeeting announces the departure to the remaining members first and
// only then removes the connection from the room.
func (o *Orchestrator) LeaveMeeting(id domain.ConnID, meetingID string) error {
	if err := domain.ValidateKey(meetingID); err != nil {
		return err
	}
	room := domain.MeetingRoom(meetingID)
	if !o.Registry.IsMember(id, room) {
		return nil
	}
	o.Broadcaster.Broadcast(room, core.EventUserLeftMeeting, core.MeetingPeerPayload{UserID: id}, id)
	o.Registry.Leave(id, room)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("meeting", meetingID).Msg("left meeting")
	return nil
}

// RelayOffer forwards an SDP offer to target, or to every other club room
// member when target is empty.
func (o *Orchestrator) RelayOffer(id domain.ConnID, clubID string, offer json.RawMessage, target domain.ConnID) error {
	return o.relay(id, clubID, core.EventWebRTCOffer, core.OfferPayload{Offer: offer, FromUserID: id}, target)
}

// RelayAnswer forwards an SDP answer to target, which is mandatory.
func (o *Orchestrator) RelayAnswer(id domain.ConnID, clubID string, answer json.RawMessage, target domain.ConnID) error {
	if target == "" {
		return ErrTargetRequired
	}
	return o.relay(id, clubID, core.EventWebRTCAnswer, core.AnswerPayload{Answer: answer, FromUserID: id}, target)
}

// RelayCandidate forwards a trickled ICE candidate, addressed like offers.
func (o *Orchestrator) RelayCandidate(id domain.ConnID, clubID string, candidate json.RawMessage, target domain.ConnID) error {
	return o.relay(id, clubID, core.EventWebRTCCandidate, core.CandidatePayload{Candidate: candidate, FromUserID: id}, target)
}

// relay never looks inside payload. A targeted relay reaches the target
// wherever it is; a target that is gone gets nothing and the sender is not
// told.
func (o *Orchestrator) relay(id domain.ConnID, clubID, event string, payload any, target domain.ConnID) error {
	if err := domain.ValidateKey(clubID); err != nil {
		return err
	}
	room := domain.ClubRoom(clubID)
	if target == "" {
		res := o.Broadcaster.Broadcast(room, event, payload, id)
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("club", clubID).Str("event", event).Int("sent_to", res.SendTo).Msg("relayed")
		return nil
	}
	if target == id {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("event", event).Msg("relay to self, dropped")
		return nil
	}
	if !o.Broadcaster.SendTo(target, event, payload) {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("target", string(target)).Str("event", event).Msg("relay target unreachable, dropped")
	}
	return nil
}

func validateKeys(clubID, meetingID string) error {
	if err := domain.ValidateKey(clubID); err != nil {
		return err
	}
	return domain.ValidateKey(meetingID)
}
