package core

import "github.com/dkeye/Clubs/internal/domain"

// session implements Session by pairing meta + transport.
type session struct {
	meta *domain.Connection
	sig  SignalConnection
}

func NewSession(meta *domain.Connection, sig SignalConnection) Session {
	return &session{meta: meta, sig: sig}
}

func (s *session) ID() domain.ConnID { return s.meta.ID }
func (s *session) Meta() *domain.Connection { return s.meta }
func (s *session) Signal() SignalConnection { return s.sig }
