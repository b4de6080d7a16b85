package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) UpdateEmailStatus(db *gorm.DB, id uuid.UUID, status entity.EmailStatus) error {
	return db.Model(&entity.Notification{}).Where("id = ?", id).Update("email_status", status).Error
}

func (r *notificationRepository) FindByUser(db *gorm.DB, tenantID, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	query := db.Where("tenant_id = ? AND user_id = ?", tenantID, userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []entity.Notification
	if err := query.Order("created_at DESC").Limit(200).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(db *gorm.DB, tenantID, userID, id uuid.UUID, at time.Time) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("tenant_id = ? AND user_id = ? AND id = ? AND read_at IS NULL", tenantID, userID, id).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(db *gorm.DB, tenantID, userID uuid.UUID, at time.Time) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("tenant_id = ? AND user_id = ? AND read_at IS NULL", tenantID, userID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}
