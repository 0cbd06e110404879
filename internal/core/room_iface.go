package core

import (
	"github.com/dkeye/Clubs/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Session
}

// RoomInfo is a read-only view of an active room for APIs.
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	Kind        domain.RoomKind `json:"kind"`
	MemberCount int             `json:"member_count"`
}
