package repository

import (
	"errors"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	var role entity.Role
	err := db.Where("role_name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// EnsureDefaults inserts the fixed role rows, leaving existing ones alone.
func (r *roleRepository) EnsureDefaults(db *gorm.DB) error {
	roles := make([]entity.Role, len(entity.DefaultRoles))
	copy(roles, entity.DefaultRoles)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}
