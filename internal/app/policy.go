package app

import (
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose outbound queue rejected
// a frame.
type Policy interface {
	OnBackPressure(room domain.RoomName, member core.Session) BackpressureAction
}

// SimplePolicy closes slow connections. The read loop then runs the normal
// disconnect cleanup.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomName, core.Session) BackpressureAction {
	return KickMember
}

// TolerantPolicy only drops the frame.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(domain.RoomName, core.Session) BackpressureAction {
	return NoAction
}
