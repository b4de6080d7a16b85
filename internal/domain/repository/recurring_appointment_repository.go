package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecurringAppointmentRepository interface {
	Create(db *gorm.DB, template *entity.RecurringAppointmentTemplate) error
	RecordGenerated(db *gorm.DB, id uuid.UUID, added int, lastOccurrence *time.Time) error
	SetActive(db *gorm.DB, id uuid.UUID, active bool) error
	FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error)
	FindByIDForUpdate(db *gorm.DB, tenantID, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error)
	FindByTenant(db *gorm.DB, tenantID uuid.UUID, clientID *uuid.UUID) ([]entity.RecurringAppointmentTemplate, error)
}
