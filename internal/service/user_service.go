package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/auth"
	"github.com/Debasish241/RealTime-Chatapp/internal/model"
	"github.com/Debasish241/RealTime-Chatapp/internal/otp"
	"github.com/Debasish241/RealTime-Chatapp/internal/repo"
)

type UserService interface {
	Login(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (*model.User, string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateName(ctx context.Context, userID, name string) (*model.User, string, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	users  repo.UserRepository
	otp    *otp.Service
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewUserService(users repo.UserRepository, otpService *otp.Service, tokens *auth.TokenManager, logger *zap.Logger) UserService {
	return &userService{users: users, otp: otpService, tokens: tokens, logger: logger}
}

// Login requests an OTP for the email. Surfaces otp.ErrRateLimited as-is so
// the handler can answer 429.
func (s *userService) Login(ctx context.Context, email string) error {
	return s.otp.RequestCode(email)
}

// Verify consumes the submitted OTP, finds or creates the user and returns
// a fresh token.
func (s *userService) Verify(ctx context.Context, email, code string) (*model.User, string, error) {
	if err := s.otp.VerifyCode(email, code); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		name := email
		if len(name) > 8 {
			name = name[:8]
		}
		user, err = s.users.Create(ctx, &model.User{Name: name, Email: email})
		if err == nil {
			s.logger.Info("user created", zap.String("email", email))
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("verify user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateName renames the user and re-issues a token carrying the identity.
func (s *userService) UpdateName(ctx context.Context, userID, name string) (*model.User, string, error) {
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return nil, "", err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	user.UpdatedAt = &now

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}
