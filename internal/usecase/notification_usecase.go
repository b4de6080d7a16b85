package usecase

import (
	"context"
	"errors"
	"time"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationUsecase interface {
	List(ctx context.Context, unreadOnly bool) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (*dto.MarkAllReadResponse, error)
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) List(ctx context.Context, unreadOnly bool) ([]dto.NotificationResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := u.notificationRepo.FindByUser(u.db.WithContext(ctx), p.TenantID, p.UserID, unreadOnly)
	if err != nil {
		u.log.Warnf("Failed to find notifications: %+v", err)
		return nil, err
	}
	return converter.NotificationsToResponses(notifications), nil
}

// MarkRead is idempotent for notifications that are already read.
func (u *notificationUsecase) MarkRead(ctx context.Context, id uuid.UUID) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}

	db := u.db.WithContext(ctx)
	affected, err := u.notificationRepo.MarkRead(db, p.TenantID, p.UserID, id, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to mark notification read: %+v", err)
		return err
	}
	if affected > 0 {
		return nil
	}

	// nothing changed: either already read or not the caller's
	own, err := u.notificationRepo.FindByUser(db, p.TenantID, p.UserID, false)
	if err != nil {
		u.log.Warnf("Failed to find notifications: %+v", err)
		return err
	}
	for _, n := range own {
		if n.ID == id {
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context) (*dto.MarkAllReadResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := u.notificationRepo.MarkAllRead(u.db.WithContext(ctx), p.TenantID, p.UserID, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to mark notifications read: %+v", err)
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: updated}, nil
}
