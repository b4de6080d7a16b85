package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(db *gorm.DB, service *entity.Service) error
	Update(db *gorm.DB, service *entity.Service) error
	Delete(db *gorm.DB, service *entity.Service) error
	FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.Service, error)
	FindByTenant(db *gorm.DB, tenantID uuid.UUID, activeOnly bool) ([]entity.Service, error)
}
