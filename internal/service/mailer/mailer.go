// Package mailer sends report mails over SMTP with github.com/wneessen/go-mail.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"MarketClose/internal/domain/models"
)

// Config is the SMTP account used for every send.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer implements repository.Mailer. Each Send dials a fresh connection
// and makes exactly one attempt.
type SMTPMailer struct {
	cfg  Config
	dial func(ctx context.Context, c *mail.Client, m *mail.Msg) error
}

func New(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		dial: func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m models.Mail) error {
	msg, err := BuildMessage(m)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}
	if err := s.dial(ctx, c, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// BuildMessage converts a report mail into a MIME message with one attachment.
func BuildMessage(m models.Mail) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, errors.New("mail has no recipients")
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.FromName, m.From); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	if len(m.Cc) > 0 {
		if err := msg.Cc(m.Cc...); err != nil {
			return nil, fmt.Errorf("mail cc: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	if m.Attachment.Name != "" {
		if err := msg.AttachReader(m.Attachment.Name, bytes.NewReader(m.Attachment.Data)); err != nil {
			return nil, fmt.Errorf("mail attachment: %w", err)
		}
	}
	return msg, nil
}
