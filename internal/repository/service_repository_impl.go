package repository

import (
	"errors"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type serviceRepository struct{}

func NewServiceRepository() domainRepo.ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) Create(db *gorm.DB, service *entity.Service) error {
	return db.Create(service).Error
}

func (r *serviceRepository) Update(db *gorm.DB, service *entity.Service) error {
	return db.Save(service).Error
}

func (r *serviceRepository) Delete(db *gorm.DB, service *entity.Service) error {
	return db.Where("tenant_id = ?", service.TenantID).Delete(service).Error
}

func (r *serviceRepository) FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) FindByTenant(db *gorm.DB, tenantID uuid.UUID, activeOnly bool) ([]entity.Service, error) {
	var services []entity.Service
	query := db.Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}
