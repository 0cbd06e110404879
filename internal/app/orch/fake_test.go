package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

type received struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func (f *fakeSignal) events(t *testing.T) []received {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]received, 0, len(f.frames))
	for _, fr := range f.frames {
		var ev received
		if err := json.Unmarshal(fr, &ev); err != nil {
			t.Fatalf("bad frame %s: %v", fr, err)
		}
		out = append(out, ev)
	}
	return out
}

func (f *fakeSignal) named(t *testing.T, name string) []received {
	t.Helper()
	var out []received
	for _, ev := range f.events(t) {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// fakeChat is an in-memory ChatStore. A non-nil gate blocks appends until
// it is closed.
type fakeChat struct {
	mu    sync.Mutex
	msgs  []domain.ChatMessage
	err   error
	gate  chan struct{}
	calls int
}

func (f *fakeChat) AppendChatMessage(ctx context.Context, d domain.ChatDraft) (domain.ChatMessage, error) {
	f.mu.Lock()
	f.calls++
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.ChatMessage{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.ChatMessage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Unix(int64(1700000000+len(f.msgs)), 0).UTC()
	m := domain.ChatMessage{
		ID:          "m" + string(rune('0'+len(f.msgs))),
		ClubID:      d.ClubID,
		SenderID:    d.SenderID,
		Content:     d.Content,
		MessageType: d.MessageType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeChat) ListChatMessages(_ context.Context, clubID string, limit int) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for i := len(f.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.msgs[i].ClubID == clubID {
			out = append(out, f.msgs[i])
		}
	}
	return out, nil
}

func (f *fakeChat) appendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeUsers struct {
	users map[string]domain.User
	err   error
	calls int
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

var errStoreDown = errors.New("store down")
