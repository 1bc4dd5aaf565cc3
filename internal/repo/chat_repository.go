package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/db"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
)

var ErrNotFound = errors.New("not found")

type ChatRepository interface {
	FindByID(ctx context.Context, id string) (*model.Chat, error)
	FindByPair(ctx context.Context, userA, userB string) (*model.Chat, error)
	Create(ctx context.Context, userA, userB string) (*model.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]model.Chat, error)
	SetLatestMessage(ctx context.Context, chatID, text, sender string) error
}

type chatRepository struct {
	mongoRepo *db.Repository[model.Chat]
	logger    *zap.Logger
}

func NewChatRepository(repo *db.Repository[model.Chat], logger *zap.Logger) ChatRepository {
	return &chatRepository{mongoRepo: repo, logger: logger}
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	chat, err := r.mongoRepo.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return chat, nil
}

// FindByPair looks up the chat for an unordered user pair.
func (r *chatRepository) FindByPair(ctx context.Context, userA, userB string) (*model.Chat, error) {
	filter := db.NewFilter().
		All("users", []string{userA, userB}).
		Size("users", 2).
		Build()

	chat, err := r.mongoRepo.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat by pair: %w", err)
	}
	return chat, nil
}

func (r *chatRepository) Create(ctx context.Context, userA, userB string) (*model.Chat, error) {
	now := time.Now()
	chat := model.Chat{
		Users:     []string{userA, userB},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.mongoRepo.Create(ctx, chat)
	if err != nil {
		r.logger.Error("failed to create chat", zap.Error(err))
		return nil, fmt.Errorf("create chat: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		chat.ID = oid
	}

	r.logger.Info("chat created",
		zap.String("chat_id", chat.ID.Hex()),
		zap.Strings("users", chat.Users))
	return &chat, nil
}

// ListForUser returns the user's chats, most recently updated first.
func (r *chatRepository) ListForUser(ctx context.Context, userID string) ([]model.Chat, error) {
	filter := db.NewFilter().Eq("users", userID).Build()
	opts := options.Find().SetSort(bson.M{"updated_at": -1})

	chats, err := r.mongoRepo.FindAll(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) SetLatestMessage(ctx context.Context, chatID, text, sender string) error {
	update := bson.M{
		"latest_message": model.LatestMessage{Text: text, Sender: sender},
		"updated_at":     time.Now(),
	}
	if _, err := r.mongoRepo.UpdateByID(ctx, chatID, update); err != nil {
		r.logger.Error("failed to update latest message",
			zap.String("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("update latest message: %w", err)
	}
	return nil
}
