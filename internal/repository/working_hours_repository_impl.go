package repository

import (
	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workingHoursRepository struct{}

func NewWorkingHoursRepository() domainRepo.WorkingHoursRepository {
	return &workingHoursRepository{}
}

func (r *workingHoursRepository) FindByProvider(db *gorm.DB, tenantID, providerID uuid.UUID) ([]entity.WorkingHours, error) {
	var hours []entity.WorkingHours
	err := db.Where("tenant_id = ? AND provider_id = ?", tenantID, providerID).
		Order("day_of_week ASC, start_time ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *workingHoursRepository) FindByProviderAndDay(db *gorm.DB, tenantID, providerID uuid.UUID, day int) ([]entity.WorkingHours, error) {
	var hours []entity.WorkingHours
	err := db.Where("tenant_id = ? AND provider_id = ? AND day_of_week = ?", tenantID, providerID, day).
		Order("start_time ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

// ReplaceForProvider swaps the whole weekly set. Callers pass a transaction.
func (r *workingHoursRepository) ReplaceForProvider(db *gorm.DB, tenantID, providerID uuid.UUID, hours []entity.WorkingHours) error {
	if err := db.Where("tenant_id = ? AND provider_id = ?", tenantID, providerID).
		Delete(&entity.WorkingHours{}).Error; err != nil {
		return err
	}
	if len(hours) == 0 {
		return nil
	}
	for i := range hours {
		hours[i].TenantID = tenantID
		hours[i].ProviderID = providerID
	}
	return db.Create(&hours).Error
}
