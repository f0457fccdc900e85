// Package mailer sends transactional email over SMTP.
package mailer

import (
	"errors"

	gomail "gopkg.in/gomail.v2"
)

// Mailer defines the interface for sending a single message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailerConfig contains options for creating a new SMTPMailer.
type SMTPMailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string // From address, e.g. "noreply@example.com"
}

// SMTPMailer is a Mailer backed by a plain SMTP server (Mailtrap in
// development, a real relay in production).
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer creates an SMTPMailer. The connection is dialed per message.
func NewSMTPMailer(cfg SMTPMailerConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("SMTP host and port must be provided")
	}
	if cfg.Sender == "" {
		return nil, errors.New("sender address must be provided")
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
	}, nil
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
