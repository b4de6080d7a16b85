package service

import (
	"context"
	"fmt"
	"time"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WaitlistMatchResult lists the entries changed by one matching run.
type WaitlistMatchResult struct {
	Notified []uuid.UUID
	Expired  []uuid.UUID
}

// WaitlistMatcher offers freed slots to waiting clients.
type WaitlistMatcher interface {
	Match(ctx context.Context, tenant *entity.Tenant, slots []scheduling.Slot) (*WaitlistMatchResult, error)
}

type waitlistMatcher struct {
	db           *gorm.DB
	log          *logrus.Logger
	waitlistRepo repository.WaitlistRepository
	events       EventRecorder
	notifier     Notifier
	now          func() time.Time
}

func NewWaitlistMatcher(db *gorm.DB, log *logrus.Logger, waitlistRepo repository.WaitlistRepository, events EventRecorder, notifier Notifier) WaitlistMatcher {
	return &waitlistMatcher{
		db:           db,
		log:          log,
		waitlistRepo: waitlistRepo,
		events:       events,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Match marks every ACTIVE entry that accepts one of slots as NOTIFIED and
// expires stale entries found on the way. Each entry changes at most once
// per run; a concurrent run that got there first wins.
func (m *waitlistMatcher) Match(ctx context.Context, tenant *entity.Tenant, slots []scheduling.Slot) (*WaitlistMatchResult, error) {
	result := &WaitlistMatchResult{}
	if len(slots) == 0 {
		return result, nil
	}

	filter := entity.WaitlistCandidateFilter{TenantID: tenant.ID}
	if id, ok := commonID(slots, func(s scheduling.Slot) uuid.UUID { return s.ServiceID }); ok {
		filter.ServiceID = &id
	}
	if id, ok := commonID(slots, func(s scheduling.Slot) uuid.UUID { return s.ProviderID }); ok {
		filter.ProviderID = &id
	}

	now := m.now().UTC()
	loc := tenant.Location()

	tx := m.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entries, err := m.waitlistRepo.FindActive(tx, filter)
	if err != nil {
		m.log.Warnf("Failed to find waitlist candidates: %+v", err)
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.WaitlistEntry, len(entries))
	candidates := make([]scheduling.Candidate, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
		candidates[i] = entries[i].Candidate(loc)
	}

	matched := scheduling.MatchWaitlist(candidates, slots, loc, now)

	if _, err := m.waitlistRepo.MarkExpired(tx, matched.Expired); err != nil {
		m.log.Warnf("Failed to expire waitlist entries: %+v", err)
		return nil, err
	}
	result.Expired = matched.Expired

	slotFor := make(map[uuid.UUID]scheduling.Slot, len(matched.Matched))
	ids := make([]uuid.UUID, 0, len(matched.Matched))
	for _, mt := range matched.Matched {
		ids = append(ids, mt.CandidateID)
		slotFor[mt.CandidateID] = mt.Slot
	}

	notified, err := m.waitlistRepo.MarkNotified(tx, ids, now)
	if err != nil {
		m.log.Warnf("Failed to mark waitlist entries notified: %+v", err)
		return nil, err
	}
	result.Notified = notified

	for _, id := range notified {
		slot := slotFor[id]
		if err := m.events.Record(ctx, tx, tenant.ID, entity.EventWaitlistNotified, id.String(), map[string]interface{}{
			"waitlist_entry_id": id,
			"client_id":         byID[id].ClientID,
			"service_id":        slot.ServiceID,
			"provider_id":       slot.ProviderID,
			"start_time":        slot.Start,
			"end_time":          slot.End,
		}); err != nil {
			m.log.Warnf("Failed to record waitlist event: %+v", err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		m.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	for _, id := range notified {
		entry := byID[id]
		slot := slotFor[id]
		local := slot.Start.In(loc)
		m.notifier.Notify(ctx, Notice{
			TenantID:  tenant.ID,
			Recipient: entry.Client,
			Type:      entity.NotificationWaitlistSlotAvailable,
			Title:     "A slot you were waiting for is available",
			Message: fmt.Sprintf("%s has an opening on %s at %s. Book it before someone else does.",
				tenant.Name, local.Format("Mon, 02 Jan 2006"), local.Format("15:04")),
			Data: map[string]interface{}{
				"waitlist_entry_id": id,
				"provider_id":       slot.ProviderID,
				"service_id":        slot.ServiceID,
				"start_time":        slot.Start,
				"end_time":          slot.End,
			},
			Email: true,
		})
	}

	if len(notified) > 0 || len(result.Expired) > 0 {
		m.log.WithFields(logrus.Fields{
			"tenant_id": tenant.ID,
			"notified":  len(notified),
			"expired":   len(result.Expired),
		}).Info("Waitlist matched")
	}

	return result, nil
}

func commonID(slots []scheduling.Slot, get func(scheduling.Slot) uuid.UUID) (uuid.UUID, bool) {
	first := get(slots[0])
	for _, s := range slots[1:] {
		if get(s) != first {
			return uuid.Nil, false
		}
	}
	return first, first != uuid.Nil
}
