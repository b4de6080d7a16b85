package repository

import (
	"errors"
	"time"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type waitlistRepository struct{}

func NewWaitlistRepository() domainRepo.WaitlistRepository {
	return &waitlistRepository{}
}

func (r *waitlistRepository) Create(db *gorm.DB, entry *entity.WaitlistEntry) error {
	return db.Omit("Client", "Service", "Provider").Create(entry).Error
}

func (r *waitlistRepository) Update(db *gorm.DB, entry *entity.WaitlistEntry) error {
	return db.Omit("Client", "Service", "Provider").Save(entry).Error
}

func (r *waitlistRepository) FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.WaitlistEntry, error) {
	var entry entity.WaitlistEntry
	err := db.Preload("Client").Preload("Service").Preload("Provider").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindAll(db *gorm.DB, filter entity.WaitlistFilter) ([]entity.WaitlistEntry, error) {
	query := db.Preload("Client").Preload("Service").Preload("Provider").Where("tenant_id = ?", filter.TenantID)
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var entries []entity.WaitlistEntry
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindActive keeps entries with no provider preference when a provider
// filter is given, since those accept any provider.
func (r *waitlistRepository) FindActive(db *gorm.DB, filter entity.WaitlistCandidateFilter) ([]entity.WaitlistEntry, error) {
	query := db.Preload("Client").Preload("Service").
		Where("tenant_id = ? AND status = ?", filter.TenantID, entity.WaitlistStatusActive)
	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.ProviderID != nil {
		query = query.Where("(provider_id IS NULL OR provider_id = ?)", *filter.ProviderID)
	}

	var entries []entity.WaitlistEntry
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) MarkNotified(db *gorm.DB, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var notified []uuid.UUID
	for _, id := range ids {
		result := db.Model(&entity.WaitlistEntry{}).
			Where("id = ? AND status = ?", id, entity.WaitlistStatusActive).
			Updates(map[string]interface{}{
				"status":      entity.WaitlistStatusNotified,
				"notified_at": at,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			notified = append(notified, id)
		}
	}
	return notified, nil
}

func (r *waitlistRepository) MarkExpired(db *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.Model(&entity.WaitlistEntry{}).
		Where("id IN ? AND status = ?", ids, entity.WaitlistStatusActive).
		Update("status", entity.WaitlistStatusExpired)
	return result.RowsAffected, result.Error
}
