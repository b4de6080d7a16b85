package repository

import (
	"errors"
	"time"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recurringAppointmentRepository struct{}

func NewRecurringAppointmentRepository() domainRepo.RecurringAppointmentRepository {
	return &recurringAppointmentRepository{}
}

func (r *recurringAppointmentRepository) Create(db *gorm.DB, template *entity.RecurringAppointmentTemplate) error {
	return db.Omit("Provider", "Client", "Service", "Appointments").Create(template).Error
}

// RecordGenerated adds to the generated count instead of overwriting it.
func (r *recurringAppointmentRepository) RecordGenerated(db *gorm.DB, id uuid.UUID, added int, lastOccurrence *time.Time) error {
	updates := map[string]interface{}{
		"generated_count": gorm.Expr("generated_count + ?", added),
	}
	if lastOccurrence != nil {
		updates["last_occurrence_at"] = *lastOccurrence
	}
	return db.Model(&entity.RecurringAppointmentTemplate{}).Where("id = ?", id).Updates(updates).Error
}

func (r *recurringAppointmentRepository) SetActive(db *gorm.DB, id uuid.UUID, active bool) error {
	return db.Model(&entity.RecurringAppointmentTemplate{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *recurringAppointmentRepository) FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error) {
	return r.findByID(db, tenantID, id)
}

// FindByIDForUpdate row-locks the template on PostgreSQL; SQLite has no
// row locks and drops the clause.
func (r *recurringAppointmentRepository) FindByIDForUpdate(db *gorm.DB, tenantID, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error) {
	return r.findByID(db.Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *recurringAppointmentRepository) findByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error) {
	var template entity.RecurringAppointmentTemplate
	err := db.Preload("Provider").Preload("Client").Preload("Service").
		Preload("Appointments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("start_time ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *recurringAppointmentRepository) FindByTenant(db *gorm.DB, tenantID uuid.UUID, clientID *uuid.UUID) ([]entity.RecurringAppointmentTemplate, error) {
	var templates []entity.RecurringAppointmentTemplate
	query := db.Preload("Provider").Preload("Client").Preload("Service").Where("tenant_id = ?", tenantID)
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
