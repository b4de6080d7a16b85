package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ContactUsecase interface {
	Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactResponse, error)
}

type contactUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	notifier   service.Notifier
}

func NewContactUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	notifier service.Notifier,
) ContactUsecase {
	return &contactUsecase{
		db:         db,
		log:        log,
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Submit forwards a public contact message to the tenant's contact address
// and to every active admin's inbox. Delivered reports the email outcome.
func (u *contactUsecase) Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactResponse, error) {
	db := u.db.WithContext(ctx)
	tenant, err := findActiveTenantBySlug(db, u.tenantRepo, u.log, req.TenantSlug)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	subject := strings.TrimSpace(req.Subject)
	text := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s", name, req.Email, req.Phone, req.Message)

	delivered := u.notifier.SendEmail(ctx, gateway.EmailMessage{
		To:      []string{tenant.ContactEmail},
		Subject: "[Contact] " + subject,
		HTML: fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;<br><strong>Phone:</strong> %s</p><p>%s</p>",
			html.EscapeString(name), html.EscapeString(req.Email), html.EscapeString(req.Phone),
			strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br>")),
		Text: text,
	})

	admins, err := u.userRepo.FindByTenant(db, tenant.ID, entity.RoleIDAdmin)
	if err != nil {
		u.log.Warnf("Failed to find tenant admins: %+v", err)
		return nil, err
	}
	for i := range admins {
		if !admins[i].Active() {
			continue
		}
		u.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: &admins[i],
			Type:      entity.NotificationContactMessage,
			Title:     "New contact message: " + subject,
			Message:   text,
			Data: map[string]interface{}{
				"name":  name,
				"email": req.Email,
				"phone": req.Phone,
			},
		})
	}

	u.log.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"delivered": delivered,
	}).Info("Contact message received")

	return &dto.ContactResponse{Delivered: delivered}, nil
}
