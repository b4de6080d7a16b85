package repository

import (
	"errors"
	"strings"

	"go-appointment-saas/internal/domain/entity"
	domainRepo "go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return db.Omit("Role", "Tenant").Create(user).Error
}

func (r *userRepository) Update(db *gorm.DB, user *entity.User) error {
	return db.Omit("Role", "Tenant").Save(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, tenantID, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.Preload("Role").Where("tenant_id = ? AND id = ?", tenantID, id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, tenantID uuid.UUID, email string) (*entity.User, error) {
	var user entity.User
	err := db.Preload("Role").
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByTenant lists members of a tenant; roleID 0 returns every role.
func (r *userRepository) FindByTenant(db *gorm.DB, tenantID uuid.UUID, roleID int) ([]entity.User, error) {
	var users []entity.User
	query := db.Preload("Role").Where("tenant_id = ?", tenantID)
	if roleID != 0 {
		query = query.Where("role_id = ?", roleID)
	}
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
