package core

import (
	"encoding/json"
	"errors"
)

// Frame is an encoded outbound event.
type Frame []byte

var ErrConnClosed = errors.New("connection closed")

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Event is the wire envelope of every frame in both directions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

func EncodeEvent(name string, data any) (Frame, error) {
	return json.Marshal(Event{Name: name, Data: data})
}
