package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message represents a chat message in MongoDB
type Message struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID      primitive.ObjectID `json:"chatId" bson:"chat_id"`
	Sender      string             `json:"sender" bson:"sender"`
	Text        string             `json:"text" bson:"text"`
	Image       *Image             `json:"image,omitempty" bson:"image,omitempty"`
	MessageType string             `json:"messageType" bson:"message_type"`
	Seen        bool               `json:"seen" bson:"seen"`
	SeenAt      *time.Time         `json:"seenAt" bson:"seen_at"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// Image holds the uploaded image location for image messages.
type Image struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicId" bson:"public_id"`
}

// Summary is the one-line preview used for chat list entries.
func (m *Message) Summary() string {
	if m.MessageType == MessageTypeImage {
		return "\U0001F4F7 Image"
	}
	return m.Text
}
