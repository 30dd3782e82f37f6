package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *CallRateLimiter

	sendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, limiter *CallRateLimiter, sendBuffer int) *SignalWSController {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &SignalWSController{
		Orch:       o,
		Limiter:    limiter,
		sendBuffer: sendBuffer,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the connection and registers it under the verified
// identity. The auth guard upstream owns verification; here the identity
// arrives via the id query param with the client token as fallback.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	raw := c.Query("id")
	if raw == "" {
		raw = c.GetString("client_token")
	}
	uid, err := domain.ParseUserID(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.sendBuffer),
	}
	cid := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("user", string(uid)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Register(uid, cid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, uid, cid, conn)
}
