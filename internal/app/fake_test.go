package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
)

var errFull = errors.New("queue full")

// fakeSignal records frames. With capacity > 0 it rejects frames once that
// many are queued.
type fakeSignal struct {
	mu       sync.Mutex
	frames   []core.Frame
	capacity int
	closed   bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	if f.capacity > 0 && len(f.frames) >= f.capacity {
		return errFull
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSignal) events(t *testing.T) []core.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Event, 0, len(f.frames))
	for _, fr := range f.frames {
		var ev struct {
			Name string          `json:"event"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(fr, &ev); err != nil {
			t.Fatalf("bad frame %s: %v", fr, err)
		}
		out = append(out, core.Event{Name: ev.Name, Data: ev.Data})
	}
	return out
}

func newTestSession(id string, capacity int) (core.Session, *fakeSignal) {
	sig := &fakeSignal{capacity: capacity}
	meta := &domain.Connection{ID: domain.ConnID(id)}
	return core.NewSession(meta, sig), sig
}
