package notify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds the SMTP account a digest is sent from.
type EmailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
	Subject    string
}

// Email sends the digest HTML as the message body with the HTML and CSV
// files attached.
type Email struct {
	cfg    EmailConfig
	dialer *gomail.Dialer
}

func NewEmail(cfg EmailConfig) (*Email, error) {
	if len(cfg.Recipients) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required")
	}
	return &Email{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// Notify sends one message to all recipients.
func (e *Email) Notify(ctx context.Context, n Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.dialer.DialAndSend(e.Message(n)); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	return nil
}

// Message builds the email for n. Without HTML the plain-text digest is used.
func (e *Email) Message(n Notice) *gomail.Message {
	subject := e.cfg.Subject
	if subject == "" {
		subject = n.Title
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", e.cfg.Recipients...)
	m.SetHeader("Subject", subject)

	if len(n.HTML) > 0 {
		m.SetBody("text/html", string(n.HTML))
		attach(m, n.HTMLName, "text/html; charset=utf-8", n.HTML)
	} else {
		m.SetBody("text/plain", FormatMessage(n))
	}
	attach(m, n.CSVName, "text/csv; charset=utf-8", n.CSV)
	return m
}

func attach(m *gomail.Message, name, contentType string, data []byte) {
	if name == "" || len(data) == 0 {
		return
	}
	m.Attach(name,
		gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
	)
}
