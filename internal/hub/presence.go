package hub

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
)

// addClient registers a connection for its user. Last connect wins: a prior
// connection for the same user is detached from every structure it touched
// and force-closed. Every registration broadcasts the full online set.
func (h *Hub) addClient(c *Client) {
	h.onlineUsersMu.Lock()
	old := h.onlineUsers[c.UserID]
	h.onlineUsers[c.UserID] = c
	h.onlineUsersMu.Unlock()

	if old != nil {
		h.detachRoom(old)
		h.stopAllTyping(old.UserID)
		old.Close()
		h.logger.Debug("superseded connection closed",
			zap.String("user_id", c.UserID), zap.String("old_client_id", old.ID))
	}

	h.broadcastPresence()
}

// removeClient unregisters a connection. The presence entry is removed only
// if it still belongs to this connection, so a stale disconnect can never
// evict a newer registration. Room and typing state for the connection are
// cleaned up regardless; the whole operation is idempotent.
func (h *Hub) removeClient(c *Client) {
	h.onlineUsersMu.Lock()
	matched := h.onlineUsers[c.UserID] == c
	if matched {
		delete(h.onlineUsers, c.UserID)
	}
	h.onlineUsersMu.Unlock()

	h.detachRoom(c)
	if matched {
		h.stopAllTyping(c.UserID)
		h.broadcastPresence()
	}
	c.Close()
}

// isCurrent reports whether c is still the registered connection for its user.
func (h *Hub) isCurrent(c *Client) bool {
	h.onlineUsersMu.RLock()
	defer h.onlineUsersMu.RUnlock()
	return h.onlineUsers[c.UserID] == c
}

// IsOnline reports whether userID has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	h.onlineUsersMu.RLock()
	defer h.onlineUsersMu.RUnlock()
	_, ok := h.onlineUsers[userID]
	return ok
}

// OnlineUsers returns the current online user-id set, sorted.
func (h *Hub) OnlineUsers() []string {
	h.onlineUsersMu.RLock()
	ids := make([]string, 0, len(h.onlineUsers))
	for id := range h.onlineUsers {
		ids = append(ids, id)
	}
	h.onlineUsersMu.RUnlock()

	sort.Strings(ids)
	return ids
}

// broadcastPresence sends the full online set to every connection. O(n) per
// change; fine at this scale, the known limit of single-process presence.
func (h *Hub) broadcastPresence() {
	payload, _ := json.Marshal(event.PresencePayload{OnlineUserIDs: h.OnlineUsers()})
	ev := event.WsEvent{Event: event.EventPresenceChanged, Payload: payload}

	h.onlineUsersMu.RLock()
	targets := make([]*Client, 0, len(h.onlineUsers))
	for _, c := range h.onlineUsers {
		targets = append(targets, c)
	}
	h.onlineUsersMu.RUnlock()

	for _, c := range targets {
		if !c.trySend(ev) {
			h.logger.Warn("presence event dropped for stale connection",
				zap.String("user_id", c.UserID))
		}
	}
}
