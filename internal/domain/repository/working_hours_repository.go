package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkingHoursRepository interface {
	FindByProvider(db *gorm.DB, tenantID, providerID uuid.UUID) ([]entity.WorkingHours, error)
	FindByProviderAndDay(db *gorm.DB, tenantID, providerID uuid.UUID, day int) ([]entity.WorkingHours, error)
	ReplaceForProvider(db *gorm.DB, tenantID, providerID uuid.UUID, hours []entity.WorkingHours) error
}
