package messaging

import (
	"context"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// NoopPublisher drops events when no broker is configured.
type NoopPublisher struct {
	log *logrus.Logger
}

func NewNoopPublisher(log *logrus.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(_ context.Context, msgs ...gateway.EventMessage) error {
	for _, m := range msgs {
		p.log.WithFields(logrus.Fields{"topic": m.Topic, "key": m.Key}).Debug("event dropped, no broker configured")
	}
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
