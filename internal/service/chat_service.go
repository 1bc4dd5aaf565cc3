package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/inbox"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
	"github.com/Debasish241/RealTime-Chatapp/internal/repo"
)

var (
	ErrSelfChat       = errors.New("cannot start a chat with yourself")
	ErrNotParticipant = errors.New("user is not a participant of this chat")
	ErrEmptyMessage   = errors.New("message must carry text or an image")
)

// Coordinator is the slice of the realtime hub the chat service needs. The
// service only reports completed storage mutations; it never touches
// connection state directly.
type Coordinator interface {
	OnMessageCreated(msg *model.Message, participants []string)
	OnMessagesSeen(chatID, seerID string, messageIDs []string)
	OnConversationOpened(userID, chatID string)
}

// ChatSummary is one row of the chat list response: the stored chat joined
// with the other participant and the viewer's unseen counter.
type ChatSummary struct {
	Chat        model.Chat  `json:"chat"`
	User        *model.User `json:"user"`
	UnseenCount int         `json:"unseenCount"`
}

type ChatService interface {
	CreateChat(ctx context.Context, userID, otherUserID string) (string, error)
	ListChats(ctx context.Context, userID string) ([]ChatSummary, error)
	SendMessage(ctx context.Context, senderID, chatID, text, imageURL string) (*model.Message, error)
	GetMessages(ctx context.Context, userID, chatID string) ([]model.Message, *model.User, error)
}

type chatService struct {
	chats    repo.ChatRepository
	messages repo.MessageRepository
	users    repo.UserRepository
	hub      Coordinator
	lists    *inbox.Synchronizer
	logger   *zap.Logger
}

func NewChatService(
	chats repo.ChatRepository,
	messages repo.MessageRepository,
	users repo.UserRepository,
	hub Coordinator,
	lists *inbox.Synchronizer,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		chats:    chats,
		messages: messages,
		users:    users,
		hub:      hub,
		lists:    lists,
		logger:   logger,
	}
}

// CreateChat returns the id of the conversation between the two users,
// creating it when the pair has never talked. The unordered pair is unique:
// a second create for the same pair returns the existing chat.
func (s *chatService) CreateChat(ctx context.Context, userID, otherUserID string) (string, error) {
	if userID == otherUserID {
		return "", ErrSelfChat
	}
	if _, err := s.users.FindByID(ctx, otherUserID); err != nil {
		return "", err
	}

	existing, err := s.chats.FindByPair(ctx, userID, otherUserID)
	if err == nil {
		return existing.ID.Hex(), nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("find chat pair: %w", err)
	}

	chat, err := s.chats.Create(ctx, userID, otherUserID)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	s.logger.Info("chat created", zap.String("chatId", chat.ID.Hex()))
	return chat.ID.Hex(), nil
}

// ListChats returns the viewer's chat list, most recently active first, with
// unseen counters. Stored rows are seeded into the synchronizer so live
// ordering and counters take over once events start flowing.
func (s *chatService) ListChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Chat, len(chats))
	for i := range chats {
		chat := &chats[i]
		chatID := chat.ID.Hex()
		byID[chatID] = chat

		unseen, err := s.messages.UnseenCount(ctx, chatID, userID)
		if err != nil {
			return nil, fmt.Errorf("unseen count for chat %s: %w", chatID, err)
		}
		entry := inbox.Entry{
			ChatID:       chatID,
			UnseenCount:  int(unseen),
			LastActivity: chat.UpdatedAt,
			CreatedAt:    chat.CreatedAt,
		}
		if chat.LatestMessage != nil {
			entry.LastMessage = chat.LatestMessage.Text
			entry.LastSender = chat.LatestMessage.Sender
		}
		s.lists.Seed(userID, entry)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, entry := range s.lists.Snapshot(userID) {
		chat, ok := byID[entry.ChatID]
		if !ok {
			continue
		}
		other, err := s.users.FindByID(ctx, chat.OtherUser(userID))
		if errors.Is(err, repo.ErrNotFound) {
			other = &model.User{Name: "Unknown User"}
		} else if err != nil {
			return nil, err
		}
		summaries = append(summaries, ChatSummary{
			Chat:        *chat,
			User:        other,
			UnseenCount: entry.UnseenCount,
		})
	}
	return summaries, nil
}

// SendMessage persists the message, refreshes the chat preview and hands the
// stored document to the hub for realtime fan-out.
func (s *chatService) SendMessage(ctx context.Context, senderID, chatID, text, imageURL string) (*model.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasUser(senderID) {
		return nil, ErrNotParticipant
	}
	if text == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.Message{
		ChatID:      chat.ID,
		Sender:      senderID,
		Text:        text,
		MessageType: model.MessageTypeText,
		CreatedAt:   time.Now(),
	}
	if imageURL != "" {
		msg.MessageType = model.MessageTypeImage
		msg.Image = &model.Image{URL: imageURL, PublicID: primitive.NewObjectID().Hex()}
	}

	msg, err = s.messages.Insert(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	if err := s.chats.SetLatestMessage(ctx, chatID, msg.Summary(), senderID); err != nil {
		s.logger.Warn("chat preview not updated", zap.String("chatId", chatID), zap.Error(err))
	}

	s.hub.OnMessageCreated(msg, chat.Users)
	return msg, nil
}

// GetMessages returns the chat history and marks everything addressed to the
// viewer as seen, notifying the sender's connections about the receipts.
func (s *chatService) GetMessages(ctx context.Context, userID, chatID string) ([]model.Message, *model.User, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasUser(userID) {
		return nil, nil, ErrNotParticipant
	}

	seenIDs, err := s.messages.MarkSeen(ctx, chatID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("mark seen: %w", err)
	}
	s.hub.OnConversationOpened(userID, chatID)
	if len(seenIDs) > 0 {
		s.hub.OnMessagesSeen(chatID, userID, seenIDs)
	}

	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	other, err := s.users.FindByID(ctx, chat.OtherUser(userID))
	if errors.Is(err, repo.ErrNotFound) {
		other = &model.User{Name: "Unknown User"}
	} else if err != nil {
		return nil, nil, err
	}
	return messages, other, nil
}
