package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Clubs/internal/app/orch"
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess core.Session, c *WsSignalConn) {
	id := sess.ID()
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(id)
		ctl.Limiter.Forget(id)
		close(c.tasks)
		c.Close()
		cancel()
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, sess, c, data)
		}
	}
}

// chatLane runs queued send-message work one at a time until the read pump
// closes the queue.
func (ctl *SignalWSController) chatLane(c *WsSignalConn) {
	for task := range c.tasks {
		task()
	}
	log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("chat lane drained")
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sess core.Session, c *WsSignalConn, data []byte) {
	event, in, err := DecodeInbound(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.ID())).Str("event", event).Msg("bad frame")
		if event == EventSendMessage {
			ctl.sendJSON(c, core.EventMessageError, core.MessageErrorPayload{Error: "Invalid message payload"})
			return
		}
		ctl.sendError(c, event, err)
		return
	}

	switch p := in.(type) {
	case JoinClub:
		ctl.handleJoinClub(sess, c, p)
	case LeaveClub:
		ctl.handleLeaveClub(sess, c, p)
	case SendMessage:
		ctl.handleSendMessage(ctx, sess, c, p)
	case StartMeeting:
		ctl.handleStartMeeting(sess, c, p)
	case JoinMeeting:
		ctl.handleJoinMeeting(sess, c, p)
	case LeaveMeeting:
		ctl.handleLeaveMeeting(sess, c, p)
	case Offer:
		ctl.handleOffer(sess, c, p)
	case Answer:
		ctl.handleAnswer(sess, c, p)
	case ICECandidate:
		ctl.handleCandidate(sess, c, p)
	case Ping:
		ctl.handlePing(c)
	case WhoAmI:
		ctl.handleWhoAmI(sess, c)
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, event string, v any) {
	f, err := core.EncodeEvent(event, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(f); err != nil && !errors.Is(err, core.ErrConnClosed) {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("event", event).Msg("sendJSON")
	}
}

// sendError reports a rejected request to the caller only.
func (ctl *SignalWSController) sendError(c *WsSignalConn, event string, err error) {
	ctl.sendJSON(c, core.EventError, core.ErrorPayload{Event: event, Error: errorText(err)})
}

func errorText(err error) string {
	switch {
	case errors.Is(err, ErrUnknownEvent):
		return "unknown_event"
	case errors.Is(err, ErrBadPayload):
		return "bad_payload"
	case errors.Is(err, domain.ErrEmptyKey):
		return "empty_id"
	case errors.Is(err, domain.ErrKeyTooLong):
		return "id_too_long"
	case errors.Is(err, orch.ErrTargetRequired):
		return "target_required"
	case errors.Is(err, orch.ErrUnknownConn):
		return "unknown_connection"
	}
	return "internal_error"
}
