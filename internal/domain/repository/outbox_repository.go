package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(db *gorm.DB, event *entity.OutboxEvent) error
	FetchUnpublished(db *gorm.DB, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(db *gorm.DB, ids []int64) error
	IncrementAttempts(db *gorm.DB, ids []int64) error
}
