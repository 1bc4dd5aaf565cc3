package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
)

var (
	// tuning parameters
	writeWait      = 10 * time.Second    // time allowed to write a message to the peer
	pongWait       = 20 * time.Second    // time allowed to read the next pong message from the peer
	pingInterval   = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize = int64(64 * 1024)    // max inbound message size (64KB)
	sendBufSize    = 256                 // per-connection outbound buffer size

	// per-connection inbound flood guard; typing bursts stay well under this
	inboundEventRate  = 20.0
	inboundEventBurst = 40
)

// Client is one live WebSocket connection bound to a single user identity.
// Outbound events go through a buffered egress queue so a slow peer never
// blocks the hub's mutation path.
type Client struct {
	ID     string
	UserID string

	conn *websocket.Conn
	hub  *Hub

	egress  chan event.WsEvent
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newClient(h *Hub, userID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		conn:    conn,
		hub:     h,
		egress:  make(chan event.WsEvent, sendBufSize),
		limiter: rate.NewLimiter(rate.Limit(inboundEventRate), inboundEventBurst),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var ev event.WsEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.hub.logger.Debug("client disconnected",
					zap.String("client_id", c.ID), zap.String("user_id", c.UserID))
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.hub.logger.Debug("client timed out", zap.String("client_id", c.ID))
				return
			}
			c.hub.logger.Warn("read error",
				zap.String("client_id", c.ID), zap.Error(err))
			return
		}

		if !c.limiter.Allow() {
			c.hub.logger.Warn("inbound event rate exceeded, dropping",
				zap.String("user_id", c.UserID), zap.String("event", ev.Event))
			continue
		}

		select {
		case c.hub.inbound <- inboundEvent{client: c, event: ev}:
		case <-c.ctx.Done():
			return
		case <-c.hub.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
			return
		case ev := <-c.egress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.logger.Debug("write error", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Debug("ping error", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// trySend enqueues ev without blocking. Returns false for a closed client or
// a full egress buffer; the caller treats either as a stale connection.
func (c *Client) trySend(ev event.WsEvent) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.egress <- ev:
		return true
	default:
		return false
	}
}

// Close tears the connection down. Idempotent; the write pump closes the
// underlying socket once the context is cancelled.
func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		if c.conn != nil {
			_ = c.conn.SetReadDeadline(time.Now())
		}
	})
}
