package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestRoomNames(t *testing.T) {
	tests := []struct {
		room RoomName
		want string
		kind RoomKind
		key  string
	}{
		{ClubRoom("42"), "club-42", RoomKindClub, "42"},
		{MeetingRoom("7"), "meeting-7", RoomKindMeeting, "7"},
		{ClubRoom("meeting-x"), "club-meeting-x", RoomKindClub, "meeting-x"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if string(tt.room) != tt.want {
				t.Errorf("name = %q, want %q", tt.room, tt.want)
			}
			if tt.room.Kind() != tt.kind {
				t.Errorf("kind = %q, want %q", tt.room.Kind(), tt.kind)
			}
			if tt.room.Key() != tt.key {
				t.Errorf("key = %q, want %q", tt.room.Key(), tt.key)
			}
		})
	}
}

func TestClubAndMeetingNamespacesDisjoint(t *testing.T) {
	if ClubRoom("1") == MeetingRoom("1") {
		t.Fatal("club and meeting rooms with the same id must differ")
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey(""); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("empty: %v", err)
	}
	if err := ValidateKey(strings.Repeat("a", MaxKeyLen+1)); !errors.Is(err, ErrKeyTooLong) {
		t.Errorf("long: %v", err)
	}
	if err := ValidateKey("abc"); err != nil {
		t.Errorf("valid: %v", err)
	}
}

func TestChatDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft ChatDraft
		want  error
	}{
		{"ok", NewTextDraft("c", "u", "hi"), nil},
		{"empty content", NewTextDraft("c", "u", ""), ErrEmptyContent},
		{"too long", NewTextDraft("c", "u", strings.Repeat("x", MaxContentLen+1)), ErrContentTooLong},
		{"no club", NewTextDraft("", "u", "hi"), ErrEmptyKey},
		{"no sender", NewTextDraft("c", "", "hi"), ErrUserIDEmpty},
		{"bad type", ChatDraft{ClubID: "c", SenderID: "u", Content: "hi", MessageType: "video"}, ErrUnknownMessageType},
		{"image", ChatDraft{ClubID: "c", SenderID: "u", Content: "https://x/y.png", MessageType: MessageImage}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewConnection(t *testing.T) {
	a := NewConnection("tok", "u1")
	b := NewConnection("tok", "u1")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("connection ids must be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.ConnectedAt.IsZero() {
		t.Error("ConnectedAt not set")
	}
}
