package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Clubs/internal/domain"
)

// Inbound event names.
const (
	EventJoinClub     = "join-club"
	EventLeaveClub    = "leave-club"
	EventSendMessage  = "send-message"
	EventStartMeeting = "start-meeting"
	EventJoinMeeting  = "join-meeting"
	EventLeaveMeeting = "leave-meeting"
	EventOffer        = "webrtc-offer"
	EventAnswer       = "webrtc-answer"
	EventCandidate    = "webrtc-ice-candidate"
	EventPing         = "ping"
	EventWhoAmI       = "whoami"
)

var (
	ErrBadPayload   = errors.New("bad payload")
	ErrUnknownEvent = errors.New("unknown event")
)

// Inbound is one decoded client event. The set of implementations is closed.
type Inbound interface {
	Event() string
	inbound()
}

type JoinClub struct {
	ClubID string `json:"clubId"`
}

type LeaveClub struct {
	ClubID string `json:"clubId"`
}

type SendMessage struct {
	ClubID  string `json:"clubId"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type StartMeeting struct {
	ClubID    string `json:"clubId"`
	MeetingID string `json:"meetingId"`
}

type JoinMeeting struct {
	ClubID    string `json:"clubId"`
	MeetingID string `json:"meetingId"`
}

type LeaveMeeting struct {
	MeetingID string `json:"meetingId"`
}

// Offer, Answer and ICECandidate carry their blob untouched.
type Offer struct {
	ClubID       string          `json:"clubId"`
	Offer        json.RawMessage `json:"offer"`
	TargetUserID domain.ConnID   `json:"targetUserId,omitempty"`
}

type Answer struct {
	ClubID       string          `json:"clubId"`
	Answer       json.RawMessage `json:"answer"`
	TargetUserID domain.ConnID   `json:"targetUserId"`
}

type ICECandidate struct {
	ClubID       string          `json:"clubId"`
	Candidate    json.RawMessage `json:"candidate"`
	TargetUserID domain.ConnID   `json:"targetUserId,omitempty"`
}

type Ping struct{}

type WhoAmI struct{}

func (JoinClub) Event() string     { return EventJoinClub }
func (LeaveClub) Event() string    { return EventLeaveClub }
func (SendMessage) Event() string  { return EventSendMessage }
func (StartMeeting) Event() string { return EventStartMeeting }
func (JoinMeeting) Event() string  { return EventJoinMeeting }
func (LeaveMeeting) Event() string { return EventLeaveMeeting }
func (Offer) Event() string        { return EventOffer }
func (Answer) Event() string       { return EventAnswer }
func (ICECandidate) Event() string { return EventCandidate }
func (Ping) Event() string         { return EventPing }
func (WhoAmI) Event() string       { return EventWhoAmI }

func (JoinClub) inbound()     {}
func (LeaveClub) inbound()    {}
func (SendMessage) inbound()  {}
func (StartMeeting) inbound() {}
func (JoinMeeting) inbound()  {}
func (LeaveMeeting) inbound() {}
func (Offer) inbound()        {}
func (Answer) inbound()       {}
func (ICECandidate) inbound() {}
func (Ping) inbound()         {}
func (WhoAmI) inbound()       {}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeInbound parses a client frame. The returned event name is set
// whenever the envelope itself parsed, so callers can report errors against
// it.
func DecodeInbound(frame []byte) (string, Inbound, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	in, err := decodeData(env.Event, env.Data)
	return env.Event, in, err
}

func decodeData(event string, data json.RawMessage) (Inbound, error) {
	switch event {
	case EventJoinClub:
		id, err := clubIDOf(data)
		return JoinClub{ClubID: id}, err
	case EventLeaveClub:
		id, err := clubIDOf(data)
		return LeaveClub{ClubID: id}, err
	case EventSendMessage:
		var p SendMessage
		return p, unmarshalObject(data, &p)
	case EventStartMeeting:
		var p StartMeeting
		return p, unmarshalObject(data, &p)
	case EventJoinMeeting:
		var p JoinMeeting
		return p, unmarshalObject(data, &p)
	case EventLeaveMeeting:
		var p LeaveMeeting
		return p, unmarshalObject(data, &p)
	case EventOffer:
		var p Offer
		if err := unmarshalObject(data, &p); err != nil {
			return nil, err
		}
		if isAbsent(p.Offer) {
			return nil, fmt.Errorf("%w: offer is required", ErrBadPayload)
		}
		return p, nil
	case EventAnswer:
		var p Answer
		if err := unmarshalObject(data, &p); err != nil {
			return nil, err
		}
		if isAbsent(p.Answer) {
			return nil, fmt.Errorf("%w: answer is required", ErrBadPayload)
		}
		return p, nil
	case EventCandidate:
		var p ICECandidate
		if err := unmarshalObject(data, &p); err != nil {
			return nil, err
		}
		if isAbsent(p.Candidate) {
			return nil, fmt.Errorf("%w: candidate is required", ErrBadPayload)
		}
		return p, nil
	case EventPing:
		return Ping{}, nil
	case EventWhoAmI:
		return WhoAmI{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// clubIDOf accepts "42" as well as {"clubId":"42"}.
func clubIDOf(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return id, nil
	}
	var p JoinClub
	if err := unmarshalObject(data, &p); err != nil {
		return "", err
	}
	return p.ClubID, nil
}

func unmarshalObject(data json.RawMessage, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: object expected", ErrBadPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
