package core

import (
	"encoding/json"

	"github.com/dkeye/Clubs/internal/domain"
)

// Outbound event names.
const (
	EventConnected         = "connected"
	EventNewMessage        = "new-message"
	EventMessageError      = "message-error"
	EventMeetingStarted    = "meeting-started"
	EventUserJoinedMeeting = "user-joined-meeting"
	EventUserLeftMeeting   = "user-left-meeting"
	EventWebRTCOffer       = "webrtc-offer"
	EventWebRTCAnswer      = "webrtc-answer"
	EventWebRTCCandidate   = "webrtc-ice-candidate"
	EventError             = "error"
	EventPong              = "pong"
	EventWhoAmI            = "whoami"
)

type ConnectedPayload struct {
	ConnectionID domain.ConnID `json:"connectionId"`
}

type MessageErrorPayload struct {
	Error string `json:"error"`
}

type ErrorPayload struct {
	Event string `json:"event,omitempty"`
	Error string `json:"error"`
}

type MeetingStartedPayload struct {
	MeetingID string        `json:"meetingId"`
	StartedBy domain.ConnID `json:"startedBy"`
}

type MeetingPeerPayload struct {
	UserID domain.ConnID `json:"userId"`
}

type OfferPayload struct {
	Offer      json.RawMessage `json:"offer"`
	FromUserID domain.ConnID   `json:"fromUserId"`
}

type AnswerPayload struct {
	Answer     json.RawMessage `json:"answer"`
	FromUserID domain.ConnID   `json:"fromUserId"`
}

type CandidatePayload struct {
	Candidate  json.RawMessage `json:"candidate"`
	FromUserID domain.ConnID   `json:"fromUserId"`
}
