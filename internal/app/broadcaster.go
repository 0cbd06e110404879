package app

import (
	"errors"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans events out to room members. The member set is read
// from the Registry at send time, never captured earlier.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
}

func NewBroadcaster(reg *Registry, policy Policy) *Broadcaster {
	return &Broadcaster{Registry: reg, Policy: policy}
}

// Broadcast delivers event to every member of room except exclude (pass ""
// to include everyone). Each recipient is tried independently; frames a
// recipient cannot take are dropped for that recipient only.
func (b *Broadcaster) Broadcast(room domain.RoomName, event string, payload any, exclude domain.ConnID) core.PublishResult {
	res := core.PublishResult{}
	frame, err := core.EncodeEvent(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode")
		return res
	}

	for _, m := range b.Registry.MembersOf(room) {
		if exclude != "" && m.ID() == exclude {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().
		Str("module", "app.broadcast").
		Str("room", string(room)).
		Str("event", event).
		Int("sent_to", res.SendTo).
		Int("dropped", len(res.Dropped)).
		Msg("broadcast result")

	b.applyPolicy(room, res.Dropped)
	return res
}

// SendTo delivers event to a single connection. It reports false when the
// connection is gone or could not take the frame.
func (b *Broadcaster) SendTo(id domain.ConnID, event string, payload any) bool {
	sess, ok := b.Registry.Session(id)
	if !ok {
		return false
	}
	return b.Emit(sess, event, payload) == nil
}

// Emit sends event straight to sess, regardless of its registration.
func (b *Broadcaster) Emit(sess core.Session, event string, payload any) error {
	frame, err := core.EncodeEvent(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode")
		return err
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		if !errors.Is(err, core.ErrConnClosed) {
			b.applyPolicy("", []core.Session{sess})
		}
		return err
	}
	return nil
}

func (b *Broadcaster) applyPolicy(room domain.RoomName, dropped []core.Session) {
	if b.Policy == nil {
		return
	}
	for _, slow := range dropped {
		switch b.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.broadcast").Str("conn", string(slow.ID())).Msg("closing slow connection")
			slow.Signal().Close()
		case NoAction:
		}
	}
}
