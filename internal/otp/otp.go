package otp

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/kvstore"
	"github.com/Debasish241/RealTime-Chatapp/internal/queue"
)

var (
	ErrRateLimited      = errors.New("too many requests: wait before requesting a new otp")
	ErrInvalidOrExpired = errors.New("invalid or expired otp")
)

const (
	codeTTL   = 5 * time.Minute
	markerTTL = 60 * time.Second
)

// Publisher hands mail jobs to the durable work queue.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Service issues and verifies one-time login codes. Codes and rate-limit
// markers live in the ephemeral key store; delivery goes through the mail
// queue, never inline.
type Service struct {
	store  *kvstore.Store
	queue  Publisher
	logger *zap.Logger
}

func NewService(store *kvstore.Store, q Publisher, logger *zap.Logger) *Service {
	return &Service{store: store, queue: q, logger: logger}
}

func codeKey(identity string) string {
	return "otp:" + identity
}

func rateLimitKey(identity string) string {
	return "otp:ratelimit:" + identity
}

// RequestCode issues a 6-digit code for identity and enqueues its delivery.
// The rate-limit marker is claimed first with an atomic check-and-set, so
// two concurrent requests can never both issue a code.
func (s *Service) RequestCode(identity string) error {
	if !s.store.SetIfAbsent(rateLimitKey(identity), "1", markerTTL) {
		return ErrRateLimited
	}

	code, err := generateCode()
	if err != nil {
		s.store.Delete(rateLimitKey(identity))
		return fmt.Errorf("generate otp: %w", err)
	}
	s.store.Set(codeKey(identity), code, codeTTL)

	job, _ := json.Marshal(queue.MailJob{
		To:      identity,
		Subject: "Your OTP code",
		Body:    fmt.Sprintf("Your OTP is %s. It is valid for 5 minutes.", code),
	})
	if err := s.queue.Publish(queue.SubjectSendOTP, job); err != nil {
		// roll back so the user can retry immediately
		s.store.Delete(codeKey(identity))
		s.store.Delete(rateLimitKey(identity))
		return fmt.Errorf("enqueue otp mail: %w", err)
	}

	s.logger.Info("otp issued", zap.String("identity", identity))
	return nil
}

// VerifyCode checks the submitted code and consumes it on success. A code
// verifies exactly once; a mismatch leaves it stored until it expires.
func (s *Service) VerifyCode(identity, submitted string) error {
	if submitted == "" || !s.store.CompareAndDelete(codeKey(identity), submitted) {
		return ErrInvalidOrExpired
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
