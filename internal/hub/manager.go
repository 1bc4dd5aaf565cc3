package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
	"github.com/Debasish241/RealTime-Chatapp/internal/inbox"
)

const inboundBufSize = 4096 // buffer for burst handling

type inboundEvent struct {
	event  event.WsEvent
	client *Client
}

// Hub is the real-time coordination engine: it tracks which users are
// reachable, which chat each connection has open, and routes presence,
// typing and receipt events to the right connections. Client events are
// processed by a single dispatch loop so broadcasts within one chat are
// delivered in arrival order.
type Hub struct {
	logger *zap.Logger

	onlineUsers   map[string]*Client // userId -> live connection
	onlineUsersMu sync.RWMutex

	rooms    map[string]map[string]*Client // chatId -> userId -> connection
	userRoom map[string]string             // userId -> chatId currently open
	roomsMu  sync.Mutex

	typing *typingTracker
	lists  *inbox.Synchronizer

	inbound    chan inboundEvent
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		logger:      logger,
		onlineUsers: make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		userRoom:    make(map[string]string),
		typing:      newTypingTracker(),
		inbound:     make(chan inboundEvent, inboundBufSize),
		unregister:  make(chan *Client, 1024),
		ctx:         ctx,
		cancel:      cancel,
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// SetChatLists wires the chat list synchronizer. Must be called before the
// first connection registers.
func (h *Hub) SetChatLists(lists *inbox.Synchronizer) {
	h.lists = lists
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.unregister:
			h.removeClient(c)
		case in := <-h.inbound:
			h.handleEvent(in.event, in.client)
		}
	}
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	// events from a superseded connection must not touch newer state
	if !h.isCurrent(c) {
		h.logger.Debug("event from superseded connection dropped",
			zap.String("user_id", c.UserID), zap.String("event", ev.Event))
		return
	}

	switch ev.Event {
	case event.EventJoinRoom:
		var p event.RoomPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			h.logger.Warn("bad joinRoom payload", zap.String("user_id", c.UserID))
			return
		}
		h.JoinRoom(p.ChatID, c)
	case event.EventLeaveRoom:
		var p event.RoomPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			h.logger.Warn("bad leaveRoom payload", zap.String("user_id", c.UserID))
			return
		}
		h.LeaveRoom(p.ChatID, c)
	case event.EventTyping:
		var p event.TypingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		// the authenticated connection identity wins over the payload
		h.Typing(p.ChatID, c.UserID)
	case event.EventStopTyping:
		var p event.TypingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		h.StopTyping(p.ChatID, c.UserID)
	default:
		h.logger.Warn("unknown event type", zap.String("event", ev.Event))
	}
}

// Stop shuts the hub down and closes every live connection.
func (h *Hub) Stop() {
	h.cancel()

	h.onlineUsersMu.Lock()
	for _, c := range h.onlineUsers {
		c.Close()
	}
	h.onlineUsers = make(map[string]*Client)
	h.onlineUsersMu.Unlock()

	h.typing.cancelAll()
	h.wg.Wait()
}

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	switch r.Header.Get("Origin") {
	case "http://localhost:3000":
		return true
	case "https://chat.debasish.dev":
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and registers the connection for userID. The
// identity token has already been validated by the caller.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(h, userID, conn)
	h.addClient(c)
	go c.readPump()
	go c.writePump()

	h.logger.Debug("client registered",
		zap.String("client_id", c.ID), zap.String("user_id", userID))
}
