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

var (
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
	ErrInvalidMessage     = errors.New("invalid message: message cannot be nil")
	ErrInvalidChatID      = errors.New("invalid chat ID: cannot be empty")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) (*model.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]model.Message, error)
	UnseenCount(ctx context.Context, chatID, viewerID string) (int64, error)
	MarkSeen(ctx context.Context, chatID, viewerID string) ([]string, error)
}

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{mongoRepo: repo, logger: logger}
}

// Insert durably records a message, retrying transient failures.
func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := m.validateMessage(msg); err != nil {
		return nil, err
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				msg.ID = oid
			}
			m.logger.Info("message inserted",
				zap.String("message_id", msg.ID.Hex()),
				zap.String("chat_id", msg.ChatID.Hex()),
				zap.Int("attempt", attempt+1),
			)
			return msg, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("chat_id", msg.ChatID.Hex()),
	)
	return nil, fmt.Errorf("insert message: %w", lastErr)
}

// ListByChat returns the chat's messages in creation order.
func (m *messageRepository) ListByChat(ctx context.Context, chatID string) ([]model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().ObjectID("chat_id", chatID).Build()
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	msgs, err := m.mongoRepo.FindAll(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// UnseenCount counts messages in the chat the viewer has not seen yet.
func (m *messageRepository) UnseenCount(ctx context.Context, chatID, viewerID string) (int64, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("chat_id", chatID).
		Ne("sender", viewerID).
		Eq("seen", false).
		Build()

	count, err := m.mongoRepo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count unseen: %w", err)
	}
	return count, nil
}

// MarkSeen flags the viewer's unseen messages as seen and returns their ids.
func (m *messageRepository) MarkSeen(ctx context.Context, chatID, viewerID string) ([]string, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("chat_id", chatID).
		Ne("sender", viewerID).
		Eq("seen", false).
		Build()

	unseen, err := m.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find unseen: %w", err)
	}
	if len(unseen) == 0 {
		return nil, nil
	}

	now := time.Now()
	if _, err := m.mongoRepo.UpdateMany(ctx, filter, bson.M{"seen": true, "seen_at": now}); err != nil {
		return nil, fmt.Errorf("mark seen: %w", err)
	}

	ids := make([]string, 0, len(unseen))
	for _, msg := range unseen {
		ids = append(ids, msg.ID.Hex())
	}

	m.logger.Debug("messages marked seen",
		zap.String("chat_id", chatID),
		zap.String("viewer_id", viewerID),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

func (m *messageRepository) validateMessage(msg *model.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if msg.ChatID.IsZero() {
		return ErrInvalidChatID
	}
	return nil
}

func (m *messageRepository) ensureTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
