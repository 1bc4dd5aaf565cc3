package hub

import (
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
)

// JoinRoom makes chatID the connection's open chat. A user is a member of at
// most one room at a time: joining implicitly leaves the previous room.
func (h *Hub) JoinRoom(chatID string, c *Client) {
	var prev string

	h.roomsMu.Lock()
	if p, ok := h.userRoom[c.UserID]; ok && p != chatID {
		prev = p
		h.removeMemberLocked(p, c.UserID)
	}
	room := h.rooms[chatID]
	if room == nil {
		room = make(map[string]*Client)
		h.rooms[chatID] = room
	}
	room[c.UserID] = c
	h.userRoom[c.UserID] = chatID
	h.roomsMu.Unlock()

	if prev != "" {
		h.stopTypingIfActive(prev, c.UserID)
	}

	h.logger.Debug("joined room",
		zap.String("chat_id", chatID), zap.String("user_id", c.UserID))
}

// LeaveRoom removes the connection's membership in chatID. Idempotent: a
// leave for a room the caller never joined is a no-op.
func (h *Hub) LeaveRoom(chatID string, c *Client) {
	h.roomsMu.Lock()
	left := false
	if room, ok := h.rooms[chatID]; ok && room[c.UserID] == c {
		h.removeMemberLocked(chatID, c.UserID)
		left = true
	}
	h.roomsMu.Unlock()

	if left {
		h.stopTypingIfActive(chatID, c.UserID)
		h.logger.Debug("left room",
			zap.String("chat_id", chatID), zap.String("user_id", c.UserID))
	}
}

// detachRoom removes whatever membership this specific connection holds.
// Membership recorded by a newer connection for the same user is untouched.
func (h *Hub) detachRoom(c *Client) {
	h.roomsMu.Lock()
	chatID, ok := h.userRoom[c.UserID]
	if ok && h.rooms[chatID][c.UserID] == c {
		h.removeMemberLocked(chatID, c.UserID)
	} else {
		ok = false
	}
	h.roomsMu.Unlock()

	if ok {
		h.stopTypingIfActive(chatID, c.UserID)
	}
}

// removeMemberLocked must be called with roomsMu held.
func (h *Hub) removeMemberLocked(chatID, userID string) {
	if room, ok := h.rooms[chatID]; ok {
		delete(room, userID)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if h.userRoom[userID] == chatID {
		delete(h.userRoom, userID)
	}
}

// IsMember reports whether userID currently has chatID open.
func (h *Hub) IsMember(chatID, userID string) bool {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	_, ok := h.rooms[chatID][userID]
	return ok
}

// broadcastToRoom delivers ev to every member of chatID except
// excludeUserID. The lock is held across the enqueue phase so concurrent
// broadcasts to the same room keep a single delivery order; enqueues never
// block, so no peer I/O happens under the lock. A member whose egress is
// gone or full just misses the event.
func (h *Hub) broadcastToRoom(chatID string, ev event.WsEvent, excludeUserID string) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()

	for userID, c := range h.rooms[chatID] {
		if userID == excludeUserID {
			continue
		}
		if !c.trySend(ev) {
			h.logger.Warn("room event dropped for stale connection",
				zap.String("chat_id", chatID),
				zap.String("user_id", userID),
				zap.String("event", ev.Event))
		}
	}
}
