package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
)

func testMessage(chatID primitive.ObjectID, sender, text string) *model.Message {
	return &model.Message{
		ID:          primitive.NewObjectID(),
		ChatID:      chatID,
		Sender:      sender,
		Text:        text,
		MessageType: model.MessageTypeText,
		CreatedAt:   time.Now(),
	}
}

func TestNewMessageReachesOpenRecipientOnly(t *testing.T) {
	h := newTestHub(t)

	alice := newClient(h, "alice", nil)
	bob := newClient(h, "bob", nil)
	carol := newClient(h, "carol", nil)
	h.addClient(alice)
	h.addClient(bob)
	h.addClient(carol)

	chatID := primitive.NewObjectID()
	h.JoinRoom(chatID.Hex(), alice)
	h.JoinRoom(chatID.Hex(), bob)
	h.JoinRoom("other", carol)
	drain(alice)
	drain(bob)
	drain(carol)

	h.OnMessageCreated(testMessage(chatID, "alice", "hello"), []string{"alice", "bob"})

	assert.Equal(t, 0, countEvents(drain(alice), event.EventNewMessage), "sender excluded")
	assert.Equal(t, 1, countEvents(drain(bob), event.EventNewMessage))
	assert.Equal(t, 0, countEvents(drain(carol), event.EventNewMessage))
}

func TestUnseenCounterTracksMembership(t *testing.T) {
	h := newTestHub(t)

	alice := newClient(h, "alice", nil)
	h.addClient(alice)
	chatID := primitive.NewObjectID()

	// bob is offline with the chat closed: three messages, three unseen
	for i := 0; i < 3; i++ {
		h.OnMessageCreated(testMessage(chatID, "alice", "hey"), []string{"alice", "bob"})
	}
	unseen, ok := h.lists.Unseen("bob", chatID.Hex())
	require.True(t, ok)
	assert.Equal(t, 3, unseen)

	// opening the chat resets the counter
	h.OnConversationOpened("bob", chatID.Hex())
	unseen, _ = h.lists.Unseen("bob", chatID.Hex())
	assert.Equal(t, 0, unseen)

	// with the chat open, live delivery replaces the counter
	bob := newClient(h, "bob", nil)
	h.addClient(bob)
	h.JoinRoom(chatID.Hex(), bob)
	h.OnMessageCreated(testMessage(chatID, "alice", "again"), []string{"alice", "bob"})
	unseen, _ = h.lists.Unseen("bob", chatID.Hex())
	assert.Equal(t, 0, unseen)
}

func TestLatestMessageWinsInChatList(t *testing.T) {
	h := newTestHub(t)
	chatID := primitive.NewObjectID()

	m1 := testMessage(chatID, "alice", "m1")
	m2 := testMessage(chatID, "alice", "m2")
	m2.CreatedAt = m1.CreatedAt.Add(time.Millisecond)

	h.OnMessageCreated(m1, []string{"alice", "bob"})
	h.OnMessageCreated(m2, []string{"alice", "bob"})

	list := h.lists.Snapshot("bob")
	require.Len(t, list, 1)
	assert.Equal(t, "m2", list[0].LastMessage)
}

func TestMessageSeenRelaysToSender(t *testing.T) {
	h := newTestHub(t)

	alice := newClient(h, "alice", nil)
	bob := newClient(h, "bob", nil)
	h.addClient(alice)
	h.addClient(bob)
	h.JoinRoom("c1", alice)
	h.JoinRoom("c1", bob)
	drain(alice)
	drain(bob)

	h.OnMessagesSeen("c1", "bob", []string{"m1", "m2"})

	evs := drain(alice)
	require.Equal(t, 1, countEvents(evs, event.EventMessageSeen))
	var p event.MessageSeenPayload
	for _, ev := range evs {
		if ev.Event == event.EventMessageSeen {
			require.NoError(t, json.Unmarshal(ev.Payload, &p))
		}
	}
	assert.Equal(t, "bob", p.SeerID)
	assert.Equal(t, []string{"m1", "m2"}, p.MessageIDs)

	assert.Equal(t, 0, countEvents(drain(bob), event.EventMessageSeen), "seer excluded")
}

func TestMessageSeenWithNoIDsIsNoOp(t *testing.T) {
	h := newTestHub(t)

	alice := newClient(h, "alice", nil)
	h.addClient(alice)
	h.JoinRoom("c1", alice)
	drain(alice)

	h.OnMessagesSeen("c1", "bob", nil)

	assert.Equal(t, 0, countEvents(drain(alice), event.EventMessageSeen))
}
