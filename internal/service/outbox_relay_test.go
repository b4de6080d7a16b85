package service

import (
	"context"
	"testing"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	db := newTestDB(t)
	outboxRepo := repository.NewOutboxRepository()
	recorder := NewEventRecorder(outboxRepo)
	tenantID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.Record(context.Background(), db, tenantID, entity.EventAppointmentCreated, uuid.NewString(), map[string]int{"n": i}))
	}

	pub := &fakePublisher{}
	relay := NewOutboxRelay(db, outboxRepo, pub, newTestLogger(), 0, 2)

	sent, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	require.Len(t, pub.published, 3)
	assert.Equal(t, entity.EventAppointmentCreated, pub.published[0].Topic)
	assert.Equal(t, tenantID.String(), pub.published[0].Headers["tenant_id"])
	assert.NotEmpty(t, pub.published[0].Headers["event_id"])

	var pending int64
	require.NoError(t, db.Model(&entity.OutboxEvent{}).Where("published_at IS NULL").Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestOutboxRelayKeepsFailedEvents(t *testing.T) {
	db := newTestDB(t)
	outboxRepo := repository.NewOutboxRepository()
	recorder := NewEventRecorder(outboxRepo)

	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.Record(context.Background(), db, uuid.New(), entity.EventWaitlistNotified, uuid.NewString(), nil))
	}

	pub := &fakePublisher{failAt: 2}
	relay := NewOutboxRelay(db, outboxRepo, pub, newTestLogger(), 0, 10)

	sent, err := relay.RelayOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, sent)

	var events []entity.OutboxEvent
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 3)
	assert.NotNil(t, events[0].PublishedAt)
	assert.Nil(t, events[1].PublishedAt)
	assert.Equal(t, 1, events[1].Attempts)
	assert.Nil(t, events[2].PublishedAt)

	relay.Stop()
	assert.True(t, pub.closed)
}
