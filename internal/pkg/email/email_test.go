package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.SMTPConfig, send func(string, smtp.Auth, string, []string, []byte) error) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)

	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = func(int) time.Duration { return 0 }
	return impl
}

func TestSendFollowupReminder_RendersTemplate(t *testing.T) {
	var sent []byte
	var recipients []string
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", FromName: "KPI Pulse"},
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			assert.Equal(t, "smtp.example.com:587", addr)
			recipients = to
			sent = msg
			return nil
		})

	err := svc.SendFollowupReminder(context.Background(), "andi@example.com", FollowupReminder{
		EmployeeName: "Andi",
		ContactName:  "Bluefin Capital",
		DueAt:        "Tue, 04 Mar 2025 10:00 UTC",
		Comments:     "Send financing options",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"andi@example.com"}, recipients)
	body := string(sent)
	assert.Contains(t, body, "From: \"KPI Pulse\" <noreply@example.com>")
	assert.Contains(t, body, "Subject: Followup reminder: Bluefin Capital")
	assert.Contains(t, body, "Hi Andi,")
	assert.Contains(t, body, "Send financing options")
	assert.False(t, strings.Contains(body, "Open the CRM"))
}

func TestSendFollowupReminder_RetriesThenFails(t *testing.T) {
	attempts := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			attempts++
			return errors.New("connection refused")
		})

	err := svc.SendFollowupReminder(context.Background(), "andi@example.com", FollowupReminder{ContactName: "Zara"})

	assert.Error(t, err)
	assert.Equal(t, maxRetries, attempts)
}

func TestSendFollowupReminder_SkippedWithoutHost(t *testing.T) {
	called := false
	svc := newTestService(t, config.SMTPConfig{}, func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	})

	err := svc.SendFollowupReminder(context.Background(), "andi@example.com", FollowupReminder{ContactName: "Zara"})

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestSendFollowupReminder_StopsRetryingWhenCancelled(t *testing.T) {
	attempts := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			attempts++
			return errors.New("connection refused")
		})
	svc.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.SendFollowupReminder(ctx, "andi@example.com", FollowupReminder{ContactName: "Zara"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestSendFollowupReminder_EncodesNonASCIISubject(t *testing.T) {
	var sent []byte
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"},
		func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
			sent = msg
			return nil
		})

	err := svc.SendFollowupReminder(context.Background(), "andi@example.com", FollowupReminder{ContactName: "Café Nusantara"})

	require.NoError(t, err)
	assert.Contains(t, string(sent), "Subject: =?utf-8?q?Followup_reminder:_Caf=C3=A9_Nusantara?=")
}
