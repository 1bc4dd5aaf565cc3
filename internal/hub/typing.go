package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
)

// quiet interval after which a typing user is considered to have stopped
var typingExpiry = 2 * time.Second

type typingKey struct {
	chatID string
	userID string
}

// typingTracker keeps one expiry timer per (chat, user) pair. An entry in
// the map means "currently typing"; absence means not typing. Expiry
// callbacks verify pointer identity so a timer that lost the race against an
// explicit stop or a re-arm is a no-op.
type typingTracker struct {
	mu     sync.Mutex
	timers map[typingKey]*time.Timer
}

func newTypingTracker() *typingTracker {
	return &typingTracker{timers: make(map[typingKey]*time.Timer)}
}

// cancel removes the pair's timer. Returns true if the user was typing.
func (t *typingTracker) cancel(k typingKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.timers[k]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, k)
	return true
}

// keysFor returns every chat the user is currently typing in.
func (t *typingTracker) keysFor(userID string) []typingKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	var keys []typingKey
	for k := range t.timers {
		if k.userID == userID {
			keys = append(keys, k)
		}
	}
	return keys
}

func (t *typingTracker) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, timer := range t.timers {
		timer.Stop()
		delete(t.timers, k)
	}
}

// Typing records that userID is typing in chatID. The first signal
// broadcasts typingStarted; repeated signals only re-arm the expiry timer,
// debouncing keystrokes into a single start/stop pair.
func (h *Hub) Typing(chatID, userID string) {
	if !h.IsMember(chatID, userID) {
		return
	}

	k := typingKey{chatID: chatID, userID: userID}

	h.typing.mu.Lock()
	if old, ok := h.typing.timers[k]; ok {
		old.Stop()
		var timer *time.Timer
		timer = time.AfterFunc(typingExpiry, func() { h.expireTyping(k, timer) })
		h.typing.timers[k] = timer
		h.typing.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(typingExpiry, func() { h.expireTyping(k, timer) })
	h.typing.timers[k] = timer
	h.typing.mu.Unlock()

	h.broadcastTyping(event.EventTypingStarted, chatID, userID)
}

// StopTyping cancels the pair's expiry timer and broadcasts typingStopped
// unconditionally. Idempotent even when the user was already idle.
func (h *Hub) StopTyping(chatID, userID string) {
	h.typing.cancel(typingKey{chatID: chatID, userID: userID})
	h.broadcastTyping(event.EventTypingStopped, chatID, userID)
}

// stopTypingIfActive is the cleanup path for leave/disconnect: it broadcasts
// a stop only if the user was actually typing.
func (h *Hub) stopTypingIfActive(chatID, userID string) {
	if h.typing.cancel(typingKey{chatID: chatID, userID: userID}) {
		h.broadcastTyping(event.EventTypingStopped, chatID, userID)
	}
}

func (h *Hub) stopAllTyping(userID string) {
	for _, k := range h.typing.keysFor(userID) {
		h.stopTypingIfActive(k.chatID, k.userID)
	}
}

// expireTyping fires when the quiet interval elapses. If the stored timer is
// no longer this one, an explicit stop or a re-arm won the race.
func (h *Hub) expireTyping(k typingKey, timer *time.Timer) {
	h.typing.mu.Lock()
	if cur, ok := h.typing.timers[k]; !ok || cur != timer {
		h.typing.mu.Unlock()
		return
	}
	delete(h.typing.timers, k)
	h.typing.mu.Unlock()

	h.broadcastTyping(event.EventTypingStopped, k.chatID, k.userID)
}

func (h *Hub) broadcastTyping(name, chatID, userID string) {
	payload, _ := json.Marshal(event.TypingPayload{ChatID: chatID, UserID: userID})
	h.broadcastToRoom(chatID, event.WsEvent{Event: name, Payload: payload}, userID)
}
