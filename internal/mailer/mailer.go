// Package mailer отправляет служебные письма (ссылка сброса пароля).
package mailer

import (
	"context"
	"fmt"
	"sync"

	"SpeakShift/internal/config"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTP отправляет письма через SMTP-сервер.
type SMTP struct {
	from string
	opts []mail.Option
	host string
}

func NewSMTP(cfg *config.Config) *SMTP {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	return &SMTP{from: cfg.EmailFrom, opts: opts, host: cfg.SMTPHost}
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Noop не отправляет письма, а пишет их в лог. Используется без настроенного SMTP.
type Noop struct {
	logger *zap.SugaredLogger

	mu   sync.Mutex
	sent []Message
}

type Message struct {
	To, Subject, Body string
}

func NewNoop(logger *zap.SugaredLogger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	n.sent = append(n.sent, Message{To: to, Subject: subject, Body: body})
	n.mu.Unlock()
	n.logger.Infow("mail not sent: smtp is not configured", "to", to, "subject", subject, "body", body)
	return nil
}

// Sent возвращает копию «отправленных» писем.
func (n *Noop) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.sent...)
}

// New выбирает реализацию по конфигурации.
func New(cfg *config.Config, logger *zap.SugaredLogger) Sender {
	if cfg.SMTPEnabled() {
		return NewSMTP(cfg)
	}
	return NewNoop(logger)
}
