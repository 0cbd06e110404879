package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/google/uuid"
)

// Memory is an in-process ChatStore and UserDirectory, used in development
// and whenever no database is reachable.
type Memory struct {
	mu       sync.RWMutex
	messages map[string][]domain.ChatMessage // clubID -> messages, append order
	users    map[string]domain.User
	now      func() time.Time
}

var (
	_ core.ChatStore     = (*Memory)(nil)
	_ core.UserDirectory = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string][]domain.ChatMessage),
		users:    make(map[string]domain.User),
		now:      time.Now,
	}
}

func (m *Memory) AppendChatMessage(ctx context.Context, draft domain.ChatDraft) (domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChatMessage{}, err
	}
	if draft.MessageType == "" {
		draft.MessageType = domain.MessageText
	}
	if err := draft.Validate(); err != nil {
		return domain.ChatMessage{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	if club := m.messages[draft.ClubID]; len(club) > 0 {
		// keep timestamps strictly increasing per club so history order
		// matches append order
		if last := club[len(club)-1].CreatedAt; !now.After(last) {
			now = last.Add(time.Microsecond)
		}
	}
	msg := domain.ChatMessage{
		ID:          uuid.NewString(),
		ClubID:      draft.ClubID,
		SenderID:    draft.SenderID,
		Content:     draft.Content,
		MessageType: draft.MessageType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.messages[draft.ClubID] = append(m.messages[draft.ClubID], msg)
	return msg, nil
}

func (m *Memory) ListChatMessages(ctx context.Context, clubID string, limit int) ([]domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	m.mu.RLock()
	club := m.messages[clubID]
	out := make([]domain.ChatMessage, len(club))
	copy(out, club)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

// PutUser inserts or replaces a user.
func (m *Memory) PutUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}
