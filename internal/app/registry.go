package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Session  core.Session
	ClubRoom domain.RoomName
	Rooms    map[domain.RoomName]struct{}
}

// Registry is the authoritative bookkeeping of live connections and the
// rooms they joined. rooms and the per-session Rooms set are two views of
// the same membership and are only mutated together under mu.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
	rooms    map[domain.RoomName]map[domain.ConnID]core.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]*sessionEntry),
		rooms:    make(map[domain.RoomName]map[domain.ConnID]core.Session),
	}
}

// Bind registers a freshly connected session with no memberships.
func (r *Registry) Bind(sess core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = &sessionEntry{
		Session: sess,
		Rooms:   make(map[domain.RoomName]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(sess.ID())).Msg("bound session")
}

func (r *Registry) Session(id domain.ConnID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Session, true
	}
	return nil, false
}

// Join adds the room to the connection's memberships. Joining twice is a
// no-op. It reports whether the membership was newly added.
func (r *Registry) Join(id domain.ConnID, room domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	return r.joinLocked(e, room)
}

// JoinClub makes room the single club room of the connection, leaving the
// previous one if it differs. It returns the room that was left, if any.
func (r *Registry) JoinClub(id domain.ConnID, room domain.RoomName) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return "", false
	}
	prev := e.ClubRoom
	if prev != "" && prev != room {
		r.leaveLocked(e, prev)
	}
	r.joinLocked(e, room)
	e.ClubRoom = room
	if prev == room {
		prev = ""
	}
	return prev, true
}

// Leave removes the room from the connection's memberships. Leaving a room
// the connection is not in is a no-op. It reports whether a membership was
// removed.
func (r *Registry) Leave(id domain.ConnID, room domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	return r.leaveLocked(e, room)
}

// MembersOf returns a snapshot of the sessions currently in room.
func (r *Registry) MembersOf(room domain.RoomName) []core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]core.Session, 0, len(members))
	for _, s := range members {
		out = append(out, s)
	}
	return out
}

func (r *Registry) IsMember(id domain.ConnID, room domain.RoomName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][id]
	return ok
}

func (r *Registry) ClubRoomOf(id domain.ConnID) (domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok || e.ClubRoom == "" {
		return "", false
	}
	return e.ClubRoom, true
}

// MeetingRoomsOf lists the meeting rooms of a connection in name order.
func (r *Registry) MeetingRoomsOf(id domain.ConnID) []domain.RoomName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	var out []domain.RoomName
	for room := range e.Rooms {
		if room.IsMeeting() {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RemoveConnection purges the connection from every room it joined and
// forgets it. Cost is proportional to the rooms the connection was in.
func (r *Registry) RemoveConnection(id domain.ConnID) []domain.RoomName {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	left := make([]domain.RoomName, 0, len(e.Rooms))
	for room := range e.Rooms {
		r.leaveLocked(e, room)
		left = append(left, room)
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Int("rooms", len(left)).Msg("removed connection")
	return left
}

// Rooms lists the active rooms with their member counts.
func (r *Registry) Rooms() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for name, members := range r.rooms {
		out = append(out, core.RoomInfo{Name: name, Kind: name.Kind(), MemberCount: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) joinLocked(e *sessionEntry, room domain.RoomName) bool {
	id := e.Session.ID()
	if _, ok := e.Rooms[room]; ok {
		return false
	}
	members := r.rooms[room]
	if members == nil {
		members = make(map[domain.ConnID]core.Session)
		r.rooms[room] = members
	}
	members[id] = e.Session
	e.Rooms[room] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Msg("joined room")
	return true
}

func (r *Registry) leaveLocked(e *sessionEntry, room domain.RoomName) bool {
	if _, ok := e.Rooms[room]; !ok {
		return false
	}
	id := e.Session.ID()
	if members, ok := r.rooms[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(e.Rooms, room)
	if e.ClubRoom == room {
		e.ClubRoom = ""
	}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Msg("left room")
	return true
}
