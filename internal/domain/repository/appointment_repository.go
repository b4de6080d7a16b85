package repository

import (
	"time"

	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	// UpdateFields writes only the given columns and only while the row is
	// still in status. Returns affected rows: 0 means it moved on.
	UpdateFields(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, fields map[string]interface{}) (int64, error)
	FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	// FindOverlapping returns non-cancelled appointments of the provider
	// intersecting [start, end), ignoring excludeID.
	FindOverlapping(db *gorm.DB, tenantID, providerID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error)
	FindByTemplate(db *gorm.DB, tenantID, templateID uuid.UUID) ([]entity.Appointment, error)
	// UpdateStatus changes status only when the row is still in from.
	// Returns affected rows: 0 means a concurrent change won.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, fields map[string]interface{}) (int64, error)
	CountByService(db *gorm.DB, serviceID uuid.UUID) (int64, error)
	SetCalendarEventID(db *gorm.DB, id uuid.UUID, eventID string) error
}
