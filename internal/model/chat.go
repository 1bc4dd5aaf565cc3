package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a two-party conversation. Users always holds exactly two distinct
// user ids; uniqueness of the unordered pair is enforced at creation time.
type Chat struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Users         []string           `json:"users" bson:"users"`
	LatestMessage *LatestMessage     `json:"latestMessage" bson:"latest_message"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// LatestMessage stores the most recent message preview shown in the chat list.
type LatestMessage struct {
	Text   string `json:"text" bson:"text"`
	Sender string `json:"sender" bson:"sender"`
}

// OtherUser returns the participant that is not userID.
func (c *Chat) OtherUser(userID string) string {
	for _, u := range c.Users {
		if u != userID {
			return u
		}
	}
	return ""
}

// HasUser reports whether userID participates in the chat.
func (c *Chat) HasUser(userID string) bool {
	for _, u := range c.Users {
		if u == userID {
			return true
		}
	}
	return false
}
