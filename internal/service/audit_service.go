package service

import (
	"context"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry identifies the record a change was made to.
type AuditEntry struct {
	TenantID   uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityName string
	EntityID   string
}

// AuditService writes audit rows inside the caller's transaction, so an
// audit failure rolls back the change it describes.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, entry AuditEntry, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, entry AuditEntry, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, entry AuditEntry, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, entry AuditEntry, newValue interface{}) error {
	return s.write(tx, entry, nil, newValue)
}

func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, entry AuditEntry, oldValue, newValue interface{}) error {
	return s.write(tx, entry, oldValue, newValue)
}

func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, entry AuditEntry, oldValue interface{}) error {
	return s.write(tx, entry, oldValue, nil)
}

func (s *auditService) write(tx *gorm.DB, entry AuditEntry, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		TenantID: entry.TenantID,
		UserID:   entry.UserID,
		Action:   entry.Action,
		Metadata: entity.JSON{
			"entity":    entry.EntityName,
			"entity_id": entry.EntityID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
