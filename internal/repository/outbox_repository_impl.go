package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepository struct{}

func NewOutboxRepository() domainRepo.OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(db *gorm.DB, event *entity.OutboxEvent) error {
	return db.Create(event).Error
}

// FetchUnpublished locks the oldest pending rows so concurrent relays skip them.
func (r *outboxRepository) FetchUnpublished(db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(db *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&entity.OutboxEvent{}).Where("id IN ?", ids).Update("published_at", time.Now().UTC()).Error
}

func (r *outboxRepository) IncrementAttempts(db *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&entity.OutboxEvent{}).Where("id IN ?", ids).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}
