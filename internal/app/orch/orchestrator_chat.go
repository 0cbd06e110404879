package orch

import (
	"context"
	"errors"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/rs/zerolog/log"
)

const sendFailedMsg = "Failed to send message"

// JoinClub silently puts the connection into the club room, leaving the
// club room it was in before.
func (o *Orchestrator) JoinClub(id domain.ConnID, clubID string) error {
	if err := domain.ValidateKey(clubID); err != nil {
		return err
	}
	prev, ok := o.Registry.JoinClub(id, domain.ClubRoom(clubID))
	if !ok {
		return ErrUnknownConn
	}
	ev := log.Info().Str("module", "orch").Str("conn", string(id)).Str("club", clubID)
	if prev != "" {
		ev = ev.Str("left", string(prev))
	}
	ev.Msg("joined club")
	return nil
}

func (o *Orchestrator) LeaveClub(id domain.ConnID, clubID string) error {
	if err := domain.ValidateKey(clubID); err != nil {
		return err
	}
	if o.Registry.Leave(id, domain.ClubRoom(clubID)) {
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("club", clubID).Msg("left club")
	}
	return nil
}

// SendMessage persists a text message and broadcasts it to the whole club
// room, sender included. Failures are reported to the sender only, as a
// message-error event, and returned.
//
// userID falls back to the session user of the connection when empty.
func (o *Orchestrator) SendMessage(ctx context.Context, sess core.Session, clubID, content, userID string) (*domain.ChatMessageView, error) {
	if userID == "" {
		userID = sess.Meta().UserID
	}
	draft := domain.NewTextDraft(clubID, userID, content)
	if err := draft.Validate(); err != nil {
		o.messageError(sess, err.Error())
		return nil, err
	}

	view, err := o.deliver(ctx, draft)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(sess.ID())).Str("club", clubID).Msg("send message")
		o.messageError(sess, sendFailedMsg)
		return nil, err
	}
	return view, nil
}

// PostMessage is SendMessage for callers without a connection (REST).
func (o *Orchestrator) PostMessage(ctx context.Context, draft domain.ChatDraft) (*domain.ChatMessageView, error) {
	if draft.MessageType == "" {
		draft.MessageType = domain.MessageText
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return o.deliver(ctx, draft)
}

// History returns persisted club messages, newest first, with senders.
func (o *Orchestrator) History(ctx context.Context, clubID string, limit int) ([]domain.ChatMessageView, error) {
	if err := domain.ValidateKey(clubID); err != nil {
		return nil, err
	}
	if o.Chat == nil {
		return nil, ErrNoStore
	}
	msgs, err := o.Chat.ListChatMessages(ctx, clubID, limit)
	if err != nil {
		return nil, err
	}
	senders := make(map[string]*domain.User)
	out := make([]domain.ChatMessageView, 0, len(msgs))
	for _, m := range msgs {
		u, ok := senders[m.SenderID]
		if !ok {
			u = o.resolveUser(ctx, m.SenderID)
			senders[m.SenderID] = u
		}
		out = append(out, domain.ChatMessageView{ChatMessage: m, Sender: u})
	}
	return out, nil
}

// deliver runs persist -> resolve sender -> broadcast. Nothing is broadcast
// unless the store accepted the message.
func (o *Orchestrator) deliver(ctx context.Context, draft domain.ChatDraft) (*domain.ChatMessageView, error) {
	if o.Chat == nil {
		return nil, ErrNoStore
	}
	msg, err := o.Chat.AppendChatMessage(ctx, draft)
	if err != nil {
		return nil, err
	}
	view := &domain.ChatMessageView{ChatMessage: msg, Sender: o.resolveUser(ctx, msg.SenderID)}

	res := o.Broadcaster.Broadcast(domain.ClubRoom(msg.ClubID), core.EventNewMessage, view, "")
	log.Info().
		Str("module", "orch").
		Str("club", msg.ClubID).
		Str("message", msg.ID).
		Int("sent_to", res.SendTo).
		Msg("message delivered")
	return view, nil
}

func (o *Orchestrator) resolveUser(ctx context.Context, id string) *domain.User {
	if o.Users == nil {
		return domain.FallbackUser(id)
	}
	u, err := o.Users.GetUser(ctx, id)
	if err != nil || u == nil {
		if err != nil && !errors.Is(err, core.ErrUserNotFound) {
			log.Warn().Err(err).Str("module", "orch").Str("user", id).Msg("user lookup failed")
		}
		return domain.FallbackUser(id)
	}
	return u
}

func (o *Orchestrator) messageError(sess core.Session, msg string) {
	_ = o.Broadcaster.Emit(sess, core.EventMessageError, core.MessageErrorPayload{Error: msg})
}
