package core

import (
	"context"
	"errors"

	"github.com/dkeye/Clubs/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// ChatStore durably keeps club chat history.
// Implementations must be safe for concurrent use.
type ChatStore interface {
	// AppendChatMessage persists the draft and returns the stored record
	// with its generated id and timestamps.
	AppendChatMessage(ctx context.Context, draft domain.ChatDraft) (domain.ChatMessage, error)
	// ListChatMessages returns at most limit messages of a club, newest first.
	ListChatMessages(ctx context.Context, clubID string, limit int) ([]domain.ChatMessage, error)
}

// UserDirectory resolves user ids to display identities.
type UserDirectory interface {
	// GetUser returns ErrUserNotFound for unknown ids.
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
