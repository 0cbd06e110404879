package core

import "github.com/dkeye/Clubs/internal/domain"

// Session binds domain.Connection and its transport endpoint.
// This is what the registry stores and fans out to.
type Session interface {
	ID() domain.ConnID
	Meta() *domain.Connection
	Signal() SignalConnection
}
