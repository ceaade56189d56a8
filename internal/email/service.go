// Package email sends account mail. Delivery is best-effort everywhere:
// a failed send is logged by the caller, never surfaced to the user.
package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Service interface {
	// SendWelcome mails the new account holder their emergency link so
	// the QR card can be printed without signing back in.
	SendWelcome(ctx context.Context, to, name, emergencyURL string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(_ context.Context, to, name, emergencyURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your emergency medical profile is ready")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Your emergency profile has been created. Anyone scanning your QR code will be taken to:</p><p><a href=%q>%s</a></p><p>Keep your profile up to date.</p>",
		name, emergencyURL, emergencyURL,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoopService is used when SMTP is not configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendWelcome(context.Context, string, string, string) error {
	return nil
}
