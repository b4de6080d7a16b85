package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go-appointment-saas/config"
	"go-appointment-saas/internal/domain/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "mail.local", Port: "2525", From: "bookings@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	id, err := m.Send(context.Background(), gateway.EmailMessage{
		To:      []string{"client@example.com"},
		Subject: "Appointment confirmed",
		Text:    "See you soon",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(id, "@mail.local>"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "bookings@example.com", gotFrom)
	assert.Equal(t, []string{"client@example.com"}, gotTo)
	assert.Contains(t, string(gotBody), "Subject: Appointment confirmed\r\n")
	assert.Contains(t, string(gotBody), "Content-Type: text/plain")
}

func TestSMTPMailerErrors(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "mail.local", Port: "25"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay down")
	}

	_, err := m.Send(context.Background(), gateway.EmailMessage{})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = m.Send(context.Background(), gateway.EmailMessage{To: []string{"a@example.com"}, Text: "x"})
	assert.ErrorContains(t, err, "relay down")
}

func TestBuildMessageMultipart(t *testing.T) {
	raw := string(buildMessage("from@example.com", "<id@host>", gateway.EmailMessage{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
		Text:    "Hi",
	}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "<p>Hi</p>")
}
