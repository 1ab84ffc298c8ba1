package service

import (
	"errors"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// MailQueue drains outbound mail on a small worker pool so request handlers
// never block on SMTP. Delivery failures are logged, not surfaced: the auth
// flows treat mail as fire-and-forget.
type MailQueue struct {
	jobs    chan *Mail
	dialer  *gomail.Dialer
	sender  string
	workers int
}

// NewMailQueue builds the queue from mail.* config. With no mail.host the
// queue runs in log-only mode, which is what local development uses.
func NewMailQueue() *MailQueue {
	q := &MailQueue{
		jobs:    make(chan *Mail, 64),
		sender:  viper.GetString("mail.sender"),
		workers: viper.GetInt("mail.workers"),
	}

	if host := viper.GetString("mail.host"); host != "" {
		q.dialer = gomail.NewDialer(host, viper.GetInt("mail.port"), q.sender, viper.GetString("mail.password"))
	}

	return q
}

func (q *MailQueue) StartWorkerPool() {
	for range q.workers {
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	for m := range q.jobs {
		if q.dialer == nil {
			zap.L().Info("Mail delivery skipped, no SMTP host configured",
				zap.String("to", m.To), zap.String("subject", m.Subject))
			continue
		}

		msg := gomail.NewMessage()
		msg.SetHeader("From", q.sender)
		msg.SetHeader("To", m.To)
		msg.SetHeader("Subject", m.Subject)
		msg.SetBody("text/html", m.Body)

		if err := q.dialer.DialAndSend(msg); err != nil {
			zap.L().Error("Failed to send mail", zap.String("to", m.To), zap.Error(err))
		}
	}
}

// Enqueue is non-blocking. A full queue is reported to the caller, who logs
// it and moves on.
func (q *MailQueue) Enqueue(m *Mail) error {
	if m.To == q.sender {
		return errors.New("invalid recipient address")
	}

	select {
	case q.jobs <- m:
		return nil
	default:
		return errors.New("mail queue full")
	}
}
