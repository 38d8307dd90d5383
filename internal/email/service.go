package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medbook/booking-api/internal/config"
	"github.com/medbook/booking-api/pkg/logger"
)

// Service delivers account emails. Delivery is a collaborator concern:
// callers treat failures as non-fatal and log them.
type Service interface {
	SendResetCode(ctx context.Context, to, code string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer backed by the configured SMTP server.
func NewSMTPMailer(cfg config.SMTPConfig) Service {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendResetCode(ctx context.Context, to, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your password reset code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your password reset code is %s. It expires in 10 minutes.\n\n"+
			"If you did not request a reset, you can ignore this email.", code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

type noopMailer struct {
	log *logger.Logger
}

// NewNoopMailer logs instead of sending, for development setups
// without an SMTP server.
func NewNoopMailer(log *logger.Logger) Service {
	return &noopMailer{log: log}
}

func (m *noopMailer) SendResetCode(ctx context.Context, to, code string) error {
	m.log.Info("reset code issued (mail delivery disabled)", "to", to)
	return nil
}
