package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Debasish241/RealTime-Chatapp/internal/db"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	UpdateName(ctx context.Context, id, name string) error
	ListAll(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
}

func NewUserRepository(repo *db.Repository[model.User]) UserRepository {
	return &userRepository{mongoRepo: repo}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.mongoRepo.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	filter := db.NewFilter().Eq("email", email).Build()
	user, err := r.mongoRepo.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	user.CreatedAt = time.Now()
	result, err := r.mongoRepo.Create(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id, name string) error {
	now := time.Now()
	update := bson.M{"name": name, "updated_at": now}
	if _, err := r.mongoRepo.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	return nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	users, err := r.mongoRepo.FindAll(ctx, db.Empty())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
