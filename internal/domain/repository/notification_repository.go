package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	UpdateEmailStatus(db *gorm.DB, id uuid.UUID, status entity.EmailStatus) error
	FindByUser(db *gorm.DB, tenantID, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	MarkRead(db *gorm.DB, tenantID, userID, id uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(db *gorm.DB, tenantID, userID uuid.UUID, at time.Time) (int64, error)
}
