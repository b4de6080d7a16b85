package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(db *gorm.DB, tenant *entity.Tenant) error
	Update(db *gorm.DB, tenant *entity.Tenant) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Tenant, error)
	FindBySlug(db *gorm.DB, slug string) (*entity.Tenant, error)
}
