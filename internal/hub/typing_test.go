package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
)

func shortenTypingExpiry(t *testing.T, d time.Duration) {
	t.Helper()
	old := typingExpiry
	typingExpiry = d
	t.Cleanup(func() { typingExpiry = old })
}

func typingPair(t *testing.T, h *Hub) (alice, bob *Client) {
	t.Helper()
	alice = newClient(h, "alice", nil)
	bob = newClient(h, "bob", nil)
	h.addClient(alice)
	h.addClient(bob)
	h.JoinRoom("c1", alice)
	h.JoinRoom("c1", bob)
	drain(alice)
	drain(bob)
	return alice, bob
}

func TestTypingDebouncesKeystrokes(t *testing.T) {
	shortenTypingExpiry(t, 40*time.Millisecond)
	h := newTestHub(t)
	_, bob := typingPair(t, h)

	// rapid keystrokes re-arm the timer; only the Idle->Typing edge broadcasts
	h.Typing("c1", "alice")
	h.Typing("c1", "alice")
	h.Typing("c1", "alice")

	require.Eventually(t, func() bool {
		h.typing.mu.Lock()
		defer h.typing.mu.Unlock()
		return len(h.typing.timers) == 0
	}, time.Second, 5*time.Millisecond, "typing entry should self-expire")

	evs := drain(bob)
	assert.Equal(t, 1, countEvents(evs, event.EventTypingStarted))
	assert.Equal(t, 1, countEvents(evs, event.EventTypingStopped))
}

func TestExplicitStopBeatsExpiryTimer(t *testing.T) {
	shortenTypingExpiry(t, 40*time.Millisecond)
	h := newTestHub(t)
	_, bob := typingPair(t, h)

	h.Typing("c1", "alice")
	h.StopTyping("c1", "alice")

	// wait past the original expiry; the cancelled timer must stay silent
	time.Sleep(3 * typingExpiry)

	evs := drain(bob)
	assert.Equal(t, 1, countEvents(evs, event.EventTypingStarted))
	assert.Equal(t, 1, countEvents(evs, event.EventTypingStopped))
}

func TestStopWhileIdleStillBroadcasts(t *testing.T) {
	h := newTestHub(t)
	_, bob := typingPair(t, h)

	h.StopTyping("c1", "alice")

	assert.Equal(t, 1, countEvents(drain(bob), event.EventTypingStopped))
}

func TestTypingFromNonMemberIsIgnored(t *testing.T) {
	h := newTestHub(t)
	_, bob := typingPair(t, h)

	carol := newClient(h, "carol", nil)
	h.addClient(carol)
	drain(bob)

	h.Typing("c1", "carol")

	assert.Equal(t, 0, countEvents(drain(bob), event.EventTypingStarted))
}

func TestTypingStopsOnLeave(t *testing.T) {
	h := newTestHub(t)
	alice, bob := typingPair(t, h)

	h.Typing("c1", "alice")
	drain(bob)
	h.LeaveRoom("c1", alice)

	assert.Equal(t, 1, countEvents(drain(bob), event.EventTypingStopped))
}
