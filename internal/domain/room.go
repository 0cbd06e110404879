package domain

import (
	"errors"
	"strings"
)

const (
	ClubRoomPrefix    = "club-"
	MeetingRoomPrefix = "meeting-"

	MaxKeyLen = 128
)

var (
	ErrEmptyKey   = errors.New("empty id")
	ErrKeyTooLong = errors.New("id too long")
)

// RoomName is the name of a broadcast group. Rooms are not stored anywhere,
// a room exists while at least one connection is joined to it.
type RoomName string

type RoomKind string

const (
	RoomKindClub    RoomKind = "club"
	RoomKindMeeting RoomKind = "meeting"
)

func ClubRoom(clubID string) RoomName { return RoomName(ClubRoomPrefix + clubID) }

func MeetingRoom(meetingID string) RoomName { return RoomName(MeetingRoomPrefix + meetingID) }

func (n RoomName) Kind() RoomKind {
	if strings.HasPrefix(string(n), MeetingRoomPrefix) {
		return RoomKindMeeting
	}
	return RoomKindClub
}

func (n RoomName) IsMeeting() bool { return n.Kind() == RoomKindMeeting }

// Key strips the namespace prefix: "meeting-7" -> "7".
func (n RoomName) Key() string {
	s := string(n)
	if after, ok := strings.CutPrefix(s, MeetingRoomPrefix); ok {
		return after
	}
	after, _ := strings.CutPrefix(s, ClubRoomPrefix)
	return after
}

// ValidateKey checks a caller supplied club or meeting id.
func ValidateKey(key string) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLen {
		return ErrKeyTooLong
	}
	return nil
}
