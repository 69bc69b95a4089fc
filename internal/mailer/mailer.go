// Package mailer delivers transactional HTML email over SMTP.
package mailer

import (
	"context"
	"fmt"

	"campus-market/internal/config"

	"github.com/rs/zerolog"
	mail "github.com/wneessen/go-mail"
)

// Message is one HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender implements Sender with go-mail.
type SMTPSender struct {
	cfg    config.MailConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP sender. A connection is dialled per message.
func NewSMTPSender(cfg config.MailConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp").Logger(),
	}
}

func (s *SMTPSender) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// Send delivers msg or returns the SMTP error so the caller can retry.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug().Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// LogSender records messages instead of sending them. It is used when SMTP is
// not configured so that the outbox still drains.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail-log").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email delivery disabled, message logged")
	return nil
}
