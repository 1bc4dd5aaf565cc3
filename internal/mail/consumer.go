package mail

import (
	"encoding/json"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/configuration"
	"github.com/Debasish241/RealTime-Chatapp/internal/queue"
)

const queueGroup = "mailers"

// Consumer drains the send-otp queue and delivers mails over SMTP. Delivery
// failures are logged and the job is dropped; the user simply requests a new
// code once the rate marker expires.
type Consumer struct {
	queue  *queue.NatsQueue
	cfg    configuration.SMTPConfig
	logger *zap.Logger
	send   func(job queue.MailJob) error
}

func NewConsumer(q *queue.NatsQueue, cfg configuration.SMTPConfig, logger *zap.Logger) *Consumer {
	c := &Consumer{queue: q, cfg: cfg, logger: logger}
	c.send = c.sendSMTP
	return c
}

// Start subscribes to the send-otp subject. Returns after the subscription
// is established; jobs are handled on NATS callbacks.
func (c *Consumer) Start() error {
	_, err := c.queue.Subscribe(queue.SubjectSendOTP, queueGroup, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", queue.SubjectSendOTP, err)
	}
	c.logger.Info("mail consumer started", zap.String("subject", queue.SubjectSendOTP))
	return nil
}

func (c *Consumer) handle(data []byte) {
	var job queue.MailJob
	if err := json.Unmarshal(data, &job); err != nil {
		c.logger.Warn("malformed mail job", zap.Error(err))
		return
	}

	if err := c.send(job); err != nil {
		c.logger.Error("failed to send otp mail",
			zap.String("to", job.To), zap.Error(err))
		return
	}
	c.logger.Info("otp mail sent", zap.String("to", job.To))
}

func (c *Consumer) sendSMTP(job queue.MailJob) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	auth := smtp.PlainAuth("", c.cfg.User, c.cfg.Password, c.cfg.Host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		c.cfg.From, job.To, job.Subject, job.Body))
	return smtp.SendMail(addr, auth, c.cfg.From, []string{job.To}, msg)
}
