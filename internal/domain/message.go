package domain

import (
	"errors"
	"time"
)

const MaxContentLen = 4000

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

var (
	ErrEmptyContent       = errors.New("message content is required")
	ErrContentTooLong     = errors.New("message content too long")
	ErrUnknownMessageType = errors.New("unknown message type")
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

// ChatDraft is a message before the store assigned it an id and timestamps.
type ChatDraft struct {
	ClubID      string
	SenderID    string
	Content     string
	MessageType MessageType
}

func NewTextDraft(clubID, senderID, content string) ChatDraft {
	return ChatDraft{ClubID: clubID, SenderID: senderID, Content: content, MessageType: MessageText}
}

func (d ChatDraft) Validate() error {
	if len(d.Content) == 0 {
		return ErrEmptyContent
	}
	if len(d.Content) > MaxContentLen {
		return ErrContentTooLong
	}
	if err := ValidateKey(d.ClubID); err != nil {
		return err
	}
	if err := ValidateUserID(d.SenderID); err != nil {
		return err
	}
	if d.MessageType != "" && !d.MessageType.Valid() {
		return ErrUnknownMessageType
	}
	return nil
}

type ChatMessage struct {
	ID          string      `json:"id"`
	ClubID      string      `json:"clubId"`
	SenderID    string      `json:"senderId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ChatMessageView is a persisted message merged with its sender identity,
// the shape delivered in new-message and by the history endpoint.
type ChatMessageView struct {
	ChatMessage
	Sender *User `json:"sender"`
}
