package database

import (
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/repository"

	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.Role{},
		&entity.Tenant{},
		&entity.User{},
		&entity.Service{},
		&entity.WorkingHours{},
		&entity.RecurringAppointmentTemplate{},
		&entity.Appointment{},
		&entity.WaitlistEntry{},
		&entity.Notification{},
		&entity.AuditLog{},
		&entity.OutboxEvent{},
	}
}

// AutoMigrate creates the schema from the entity definitions and seeds the
// role table. SQL migrations remain the source of truth for PostgreSQL;
// this path serves local development and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return repository.NewRoleRepository().EnsureDefaults(db)
}
