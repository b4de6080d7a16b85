package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(db *gorm.DB, entry *entity.WaitlistEntry) error
	Update(db *gorm.DB, entry *entity.WaitlistEntry) error
	FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.WaitlistEntry, error)
	FindAll(db *gorm.DB, filter entity.WaitlistFilter) ([]entity.WaitlistEntry, error)
	// FindActive returns ACTIVE entries in FIFO order.
	FindActive(db *gorm.DB, filter entity.WaitlistCandidateFilter) ([]entity.WaitlistEntry, error)
	// MarkNotified flips ACTIVE entries to NOTIFIED. Entries already moved
	// on are left untouched; the ids actually changed are returned.
	MarkNotified(db *gorm.DB, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error)
	MarkExpired(db *gorm.DB, ids []uuid.UUID) (int64, error)
}
