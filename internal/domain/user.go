// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxUserIDLen = 128

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

// ConnID identifies one live transport session. It is the caller identity
// in every relayed signaling event.
type ConnID string

func NewConnID() ConnID { return ConnID(uuid.NewString()) }

type User struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"displayName,omitempty" bson:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
}

// FallbackUser is the minimal identity used when the directory cannot
// resolve a sender.
func FallbackUser(id string) *User {
	return &User{ID: id}
}

func ValidateUserID(id string) error {
	if len(id) == 0 {
		return ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return ErrUserIDTooLong
	}
	return nil
}

// Connection is the meta of a live client connection.
// No transport or lifecycle logic here.
type Connection struct {
	ID          ConnID
	ClientToken string
	// UserID is the identity stored in the cookie session, empty for guests.
	UserID      string
	ConnectedAt time.Time
}

func NewConnection(clientToken, userID string) *Connection {
	return &Connection{
		ID:          NewConnID(),
		ClientToken: clientToken,
		UserID:      userID,
		ConnectedAt: time.Now(),
	}
}
