package messaging

import (
	"context"
	"testing"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topicPrefix: "appointments"}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	err := p.Publish(ctx, gateway.EventMessage{
		Topic:   "appointment.created",
		Key:     "appt-1",
		Value:   []byte(`{"id":"appt-1"}`),
		Headers: map[string]string{"event_id": "evt-1"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "appointments.appointment.created", msg.Topic)
	assert.Equal(t, "appt-1", string(msg.Key))

	carrier := &headerCarrier{headers: msg.Headers}
	assert.Equal(t, "evt-1", carrier.Get("event_id"))
	assert.Contains(t, carrier.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestHeaderCarrierOverwrites(t *testing.T) {
	c := &headerCarrier{}
	c.Set("k", "a")
	c.Set("k", "b")
	assert.Equal(t, []string{"k"}, c.Keys())
	assert.Equal(t, "b", c.Get("k"))
}
