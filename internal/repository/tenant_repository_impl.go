package repository

import (
	"errors"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantRepository struct{}

func NewTenantRepository() domainRepo.TenantRepository {
	return &tenantRepository{}
}

func (r *tenantRepository) Create(db *gorm.DB, tenant *entity.Tenant) error {
	return db.Create(tenant).Error
}

func (r *tenantRepository) Update(db *gorm.DB, tenant *entity.Tenant) error {
	return db.Save(tenant).Error
}

func (r *tenantRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Tenant, error) {
	var tenant entity.Tenant
	err := db.Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindBySlug(db *gorm.DB, slug string) (*entity.Tenant, error) {
	var tenant entity.Tenant
	err := db.Where("slug = ?", slug).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}
