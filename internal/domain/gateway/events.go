package gateway

import "context"

// EventMessage is a domain event ready for the broker.
type EventMessage struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

type EventPublisher interface {
	Publish(ctx context.Context, msgs ...EventMessage) error
	Close() error
}
