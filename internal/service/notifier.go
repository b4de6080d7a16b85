package service

import (
	"context"
	"encoding/json"
	"time"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notifyTimeout = 10 * time.Second

// Notice is a message for one recipient. The email copy is sent when
// Email is set and the recipient has an address.
type Notice struct {
	TenantID  uuid.UUID
	Recipient *entity.User
	Type      entity.NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Email     bool
	HTML      string
}

// Notifier stores in-app notifications and mails a copy. It runs after the
// primary write has committed; every failure is logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) *entity.Notification
	SendEmail(ctx context.Context, msg gateway.EmailMessage) bool
}

type notifier struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	mailer           gateway.Mailer
}

func NewNotifier(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository, mailer gateway.Mailer) Notifier {
	return &notifier{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
		mailer:           mailer,
	}
}

func (n *notifier) Notify(ctx context.Context, notice Notice) *entity.Notification {
	if notice.Recipient == nil {
		return nil
	}
	// detach from the request so a client disconnect does not drop the notice
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	var data datatypes.JSON
	if len(notice.Data) > 0 {
		raw, err := json.Marshal(notice.Data)
		if err != nil {
			n.log.Errorf("Failed to encode notification data: %+v", err)
		} else {
			data = raw
		}
	}

	notification := &entity.Notification{
		TenantID:    notice.TenantID,
		UserID:      notice.Recipient.ID,
		Type:        notice.Type,
		Title:       notice.Title,
		Message:     notice.Message,
		Data:        data,
		EmailStatus: entity.EmailStatusSkipped,
	}

	if err := n.notificationRepo.Create(n.db.WithContext(ctx), notification); err != nil {
		n.log.Errorf("Failed to store notification for user %s: %+v", notice.Recipient.ID, err)
		return nil
	}

	if !notice.Email || notice.Recipient.Email == "" {
		return notification
	}

	status := entity.EmailStatusFailed
	if n.SendEmail(ctx, gateway.EmailMessage{
		To:      []string{notice.Recipient.Email},
		Subject: notice.Title,
		HTML:    notice.HTML,
		Text:    notice.Message,
	}) {
		status = entity.EmailStatusSent
	}

	if err := n.notificationRepo.UpdateEmailStatus(n.db.WithContext(ctx), notification.ID, status); err != nil {
		n.log.Errorf("Failed to update email status of notification %s: %+v", notification.ID, err)
	}
	notification.EmailStatus = status

	return notification
}

func (n *notifier) SendEmail(ctx context.Context, msg gateway.EmailMessage) bool {
	msgID, err := n.mailer.Send(ctx, msg)
	if err != nil {
		n.log.WithField("to", msg.To).Errorf("Failed to send email %q: %+v", msg.Subject, err)
		return false
	}
	n.log.WithFields(logrus.Fields{"to": msg.To, "message_id": msgID}).Debug("Email sent")
	return true
}
