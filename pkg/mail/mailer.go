package mail

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"

	"github.com/campushub/campus-portal-api/pkg/config"
)

// Mailer sends transactional notification mail over SMTP with STARTTLS.
type Mailer struct {
	dialer *mail.Dialer
	from   string
	logger *zap.Logger
}

// New builds a Mailer from SMTP configuration. A Mailer with an empty host is
// valid and silently drops messages, so callers never need a nil check.
func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" || cfg.From == "" {
		return &Mailer{from: cfg.From, logger: logger}
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &Mailer{dialer: d, from: cfg.From, logger: logger}
}

// Send delivers an HTML message to the given recipients.
func (m *Mailer) Send(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if m.dialer == nil {
		m.logger.Debug("smtp not configured, dropping mail", zap.String("subject", subject))
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
