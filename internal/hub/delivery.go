package hub

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/event"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
)

// OnMessageCreated is invoked after storage durably recorded a new message.
// Delivery is room-scoped, not presence-scoped: only a recipient with the
// chat open receives the live event; anyone else learns of it through their
// chat list's unseen counter.
func (h *Hub) OnMessageCreated(msg *model.Message, participants []string) {
	chatID := msg.ChatID.Hex()

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message event", zap.Error(err))
		return
	}
	h.broadcastToRoom(chatID, event.WsEvent{
		Event:   event.EventNewMessage,
		Payload: payload,
	}, msg.Sender)

	if h.lists != nil {
		h.lists.OnMessageCreated(chatID, msg.Sender, msg.Summary(), msg.CreatedAt, participants)
	}
}

// OnMessagesSeen is invoked after storage marked messages seen. It relays
// the receipt to the room so the original sender's client can mark the ids
// as read; the seer is excluded.
func (h *Hub) OnMessagesSeen(chatID, seerID string, messageIDs []string) {
	if len(messageIDs) == 0 {
		return
	}

	payload, _ := json.Marshal(event.MessageSeenPayload{
		ChatID:     chatID,
		SeerID:     seerID,
		MessageIDs: messageIDs,
	})
	h.broadcastToRoom(chatID, event.WsEvent{
		Event:   event.EventMessageSeen,
		Payload: payload,
	}, seerID)
}

// OnConversationOpened resets the opener's unseen counter for the chat.
func (h *Hub) OnConversationOpened(userID, chatID string) {
	if h.lists != nil {
		h.lists.OnConversationOpened(userID, chatID)
	}
}
