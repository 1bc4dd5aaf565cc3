package event

import "encoding/json"

// Server -> client events
const (
	EventPresenceChanged = "presenceChanged"
	EventTypingStarted   = "typingStarted"
	EventTypingStopped   = "typingStopped"
	EventNewMessage      = "newMessage"
	EventMessageSeen     = "messageSeen"
	EventError           = "error"
)

// Client -> server events
const (
	EventJoinRoom   = "joinRoom"
	EventLeaveRoom  = "leaveRoom"
	EventTyping     = "typing"
	EventStopTyping = "stopTyping"
)

type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PresencePayload carries the full online set, not a delta.
type PresencePayload struct {
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// RoomPayload is sent by clients for joinRoom/leaveRoom.
type RoomPayload struct {
	ChatID string `json:"chatId"`
}

// TypingPayload is shared by typing/stopTyping and their server-side echoes.
type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// MessageSeenPayload tells the original sender which messages were read.
type MessageSeenPayload struct {
	ChatID     string   `json:"chatId"`
	SeerID     string   `json:"seerId"`
	MessageIDs []string `json:"messageIds"`
}

// ErrorPayload represents an error response sent to a client via WebSocket
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
