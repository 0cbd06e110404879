package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Clubs/internal/app/orch"
	"github.com/dkeye/Clubs/internal/config"
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const (
	writeWait    = 5 * time.Second
	storeTimeout = 10 * time.Second
	chatQueueLen = 32
)

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *MessageRateLimiter

	readLimit  int64
	pingPeriod time.Duration
	pongWait   time.Duration
	sendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		Limiter:    NewMessageRateLimiter(cfg.MessageRate.Limit, cfg.MessageRate.Interval),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PongWait,
		sendBuffer: cfg.SendBuffer,
	}
}

// WsSignalConn is the websocket side of a session. Frames queued with
// TrySend are written by a single write pump in queue order.
type WsSignalConn struct {
	id    domain.ConnID
	conn  *websocket.Conn
	send  chan core.Frame
	tasks chan func()

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(id domain.ConnID, ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		id:    id,
		conn:  ws,
		send:  make(chan core.Frame, buffer),
		tasks: make(chan func(), chatQueueLen),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// enqueue hands work to the chat lane. It reports false when the lane is
// full.
func (c *WsSignalConn) enqueue(task func()) bool {
	select {
	case c.tasks <- task:
		return true
	default:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	meta := domain.NewConnection(c.GetString("client_token"), c.GetString("user_id"))
	conn := newWsSignalConn(meta.ID, ws, ctl.sendBuffer)
	sess := core.NewSession(meta, conn)
	log.Info().
		Str("module", "signal").
		Str("conn", string(meta.ID)).
		Str("client", meta.ClientToken).
		Str("user", meta.UserID).
		Msg("new WS connection")

	ctl.Orch.OnConnect(sess)
	ctl.sendJSON(conn, core.EventConnected, core.ConnectedPayload{ConnectionID: meta.ID})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.chatLane(conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
