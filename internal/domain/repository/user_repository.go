package repository

import (
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	Update(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.User, error)
	FindByEmail(db *gorm.DB, tenantID uuid.UUID, email string) (*entity.User, error)
	FindByTenant(db *gorm.DB, tenantID uuid.UUID, roleID int) ([]entity.User, error)
}
