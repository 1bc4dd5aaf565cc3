package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
	"github.com/Debasish241/RealTime-Chatapp/internal/inbox"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zap.NewNop())
	h.SetChatLists(inbox.NewSynchronizer(h))
	t.Cleanup(h.Stop)
	return h
}

// drain empties a client's egress queue without blocking.
func drain(c *Client) []event.WsEvent {
	var evs []event.WsEvent
	for {
		select {
		case ev := <-c.egress:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func countEvents(evs []event.WsEvent, name string) int {
	n := 0
	for _, ev := range evs {
		if ev.Event == name {
			n++
		}
	}
	return n
}

func lastPresence(t *testing.T, evs []event.WsEvent) []string {
	t.Helper()
	var ids []string
	for _, ev := range evs {
		if ev.Event != event.EventPresenceChanged {
			continue
		}
		var p event.PresencePayload
		require.NoError(t, json.Unmarshal(ev.Payload, &p))
		ids = p.OnlineUserIDs
	}
	return ids
}
