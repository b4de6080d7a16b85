package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, tenantID uuid.UUID, action string, page, limit int) ([]entity.AuditLog, int64, error)
	FindByID(db *gorm.DB, tenantID uuid.UUID, id int64) (*entity.AuditLog, error)
}
