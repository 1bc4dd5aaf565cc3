package queue

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectSendOTP is the work queue subject for outbound OTP mails.
const SubjectSendOTP = "send-otp"

// MailJob is the payload exchanged between the API server and the mailer.
type MailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NatsQueue wraps the NATS connection used as the durable hand-off between
// the API server and the mail worker.
type NatsQueue struct {
	conn *nats.Conn
}

func Connect(url string) (*NatsQueue, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NatsQueue{conn: conn}, nil
}

func (q *NatsQueue) Publish(subject string, data []byte) error {
	return q.conn.Publish(subject, data)
}

// Subscribe joins the named queue group so multiple mail workers share the
// subject without duplicate delivery.
func (q *NatsQueue) Subscribe(subject, group string, handler func(data []byte)) (*nats.Subscription, error) {
	return q.conn.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

func (q *NatsQueue) Close() {
	_ = q.conn.Drain()
}
