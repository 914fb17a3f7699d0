package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

type EmailService interface {
	SendFollowupReminder(ctx context.Context, to string, data FollowupReminder) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   func(attempt int) time.Duration
}

// NewEmailService parses the embedded templates. Sending is a no-op while cfg.Host is empty.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

// FollowupReminder is the data rendered into followup_reminder.html.
type FollowupReminder struct {
	EmployeeName string
	ContactName  string
	DueAt        string
	Comments     string
	Link         string
}

func (s *emailServiceImpl) SendFollowupReminder(ctx context.Context, to string, data FollowupReminder) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "followup_reminder.html", data); err != nil {
		return fmt.Errorf("failed to render followup reminder: %w", err)
	}

	return s.sendHTML(ctx, to, "Followup reminder: "+data.ContactName, body.Bytes())
}

func (s *emailServiceImpl) message(to, subject string, htmlBody []byte) []byte {
	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(htmlBody)
	return msg.Bytes()
}

func (s *emailServiceImpl) sendHTML(ctx context.Context, to, subject string, htmlBody []byte) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	msg := s.message(to, subject, htmlBody)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = s.send(addr, auth, s.cfg.From, []string{to}, msg)
		if lastErr == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}
		slog.Error("Failed to send email", "to", to, "attempt", attempt, "max_retries", maxRetries, "error", lastErr)

		if attempt == maxRetries {
			break
		}
		timer := time.NewTimer(s.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("email to %s abandoned: %w", to, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
