package mail

import (
	"context"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NoopMailer logs instead of sending. Used when no relay is configured.
type NoopMailer struct {
	log *logrus.Logger
}

func NewNoopMailer(log *logrus.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

func (m *NoopMailer) Send(_ context.Context, msg gateway.EmailMessage) (string, error) {
	m.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Debug("Email delivery disabled, message dropped")
	return "noop-" + uuid.NewString(), nil
}
