package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gorm.io/gorm"
)

const (
	defaultRelayInterval  = 2 * time.Second
	defaultRelayBatchSize = 50
	relayPublishTimeout   = 10 * time.Second
)

// OutboxRelay moves committed outbox events to the broker.
//
// Each batch is fetched and marked published inside one transaction, so a
// crash between publish and mark re-sends the batch. Consumers dedupe on
// the event_id header.
type OutboxRelay struct {
	db         *gorm.DB
	outboxRepo repository.OutboxRepository
	publisher  gateway.EventPublisher
	log        *logrus.Logger
	interval   time.Duration
	batchSize  int

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewOutboxRelay(db *gorm.DB, outboxRepo repository.OutboxRepository, publisher gateway.EventPublisher, log *logrus.Logger, interval time.Duration, batchSize int) *OutboxRelay {
	if interval <= 0 {
		interval = defaultRelayInterval
	}
	if batchSize <= 0 {
		batchSize = defaultRelayBatchSize
	}
	return &OutboxRelay{
		db:         db,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		log:        log,
		interval:   interval,
		batchSize:  batchSize,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the polling goroutine. Call Stop during graceful shutdown.
func (r *OutboxRelay) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	r.wg.Add(1)
	go r.loop()
}

// Stop waits for the in-flight batch and closes the publisher.
// Safe to call multiple times.
func (r *OutboxRelay) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		close(r.stopChan)
		r.wg.Wait()
		if err := r.publisher.Close(); err != nil {
			r.log.Warnf("Failed to close event publisher: %+v", err)
		}
		r.log.Info("OutboxRelay stopped")
	}
}

func (r *OutboxRelay) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
			if _, err := r.RelayOnce(ctx); err != nil {
				r.log.Errorf("Outbox relay failed: %+v", err)
			}
			cancel()
		}
	}
}

// RelayOnce publishes one batch and returns how many events were sent.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	tx := r.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	events, err := r.outboxRepo.FetchUnpublished(tx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, tx.Commit().Error
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
			"traceparent": e.Traceparent,
			"tracestate":  e.Tracestate,
		})
		msg := gateway.EventMessage{
			Topic: e.EventType,
			Key:   e.AggregateID,
			Value: e.Payload,
			Headers: map[string]string{
				"event_id":   e.EventID.String(),
				"event_type": e.EventType,
				"tenant_id":  e.TenantID.String(),
			},
		}
		if err := r.publisher.Publish(msgCtx, msg); err != nil {
			// keep what was sent so far; the rest is retried next tick
			if markErr := r.outboxRepo.MarkPublished(tx, ids); markErr != nil {
				return 0, markErr
			}
			if incErr := r.outboxRepo.IncrementAttempts(tx, []int64{e.ID}); incErr != nil {
				return 0, incErr
			}
			if commitErr := tx.Commit().Error; commitErr != nil {
				return 0, commitErr
			}
			return len(ids), err
		}
		ids = append(ids, e.ID)
	}

	if err := r.outboxRepo.MarkPublished(tx, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	r.log.Debugf("Relayed %d outbox events", len(ids))
	return len(ids), nil
}
