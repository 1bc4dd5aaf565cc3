package configuration

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/auth"
	"github.com/Debasish241/RealTime-Chatapp/internal/db"
	"github.com/Debasish241/RealTime-Chatapp/internal/handler"
	"github.com/Debasish241/RealTime-Chatapp/internal/hub"
	"github.com/Debasish241/RealTime-Chatapp/internal/inbox"
	"github.com/Debasish241/RealTime-Chatapp/internal/kvstore"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
	"github.com/Debasish241/RealTime-Chatapp/internal/otp"
	"github.com/Debasish241/RealTime-Chatapp/internal/queue"
	"github.com/Debasish241/RealTime-Chatapp/internal/ratelimit"
	"github.com/Debasish241/RealTime-Chatapp/internal/repo"
	"github.com/Debasish241/RealTime-Chatapp/internal/service"
)

type Container struct {
	UserHandler  handler.UserHandler
	ChatHandler  handler.ChatHandler
	Hub          *hub.Hub
	Tokens       *auth.TokenManager
	LoginLimiter *ratelimit.MapLimiter
	Config       Config
	Logger       *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
	store       *kvstore.Store
	natsQueue   *queue.NatsQueue
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	userRepo := repo.NewUserRepository(db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection))
	chatRepo := repo.NewChatRepository(db.NewRepository[model.Chat](con, config.ChatDatabase.ChatsCollection), logger)
	messageRepo := repo.NewMessageRepository(db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection), logger)

	natsQueue, err := queue.Connect(config.Nats.Url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	store := kvstore.New()
	otpService := otp.NewService(store, natsQueue, logger)
	tokens := auth.NewTokenManager(config.Auth.Secret, config.Auth.TokenTTL())

	realtimeHub := hub.NewHub(logger)
	chatLists := inbox.NewSynchronizer(realtimeHub)
	realtimeHub.SetChatLists(chatLists)

	userService := service.NewUserService(userRepo, otpService, tokens, logger)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, realtimeHub, chatLists, logger)

	return &Container{
		UserHandler:  handler.NewUserHandler(userService),
		ChatHandler:  handler.NewChatHandler(chatService),
		Hub:          realtimeHub,
		Tokens:       tokens,
		LoginLimiter: ratelimit.NewMapLimiter(1, 3, 10*time.Minute),
		Config:       *config,
		Logger:       logger,
		mongoClient:  con,
		store:        store,
		natsQueue:    natsQueue,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.natsQueue != nil {
		c.natsQueue.Close()
	}

	if c.store != nil {
		c.store.Close()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
