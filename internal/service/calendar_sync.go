package service

import (
	"context"
	"fmt"
	"time"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const calendarTimeout = 10 * time.Second

// CalendarSync mirrors appointments into the external calendar. Failures
// are logged and never surface to the caller.
type CalendarSync interface {
	Created(ctx context.Context, tenant *entity.Tenant, appointment *entity.Appointment)
	Updated(ctx context.Context, tenant *entity.Tenant, appointment *entity.Appointment)
	Cancelled(ctx context.Context, appointment *entity.Appointment)
}

type calendarSync struct {
	db              *gorm.DB
	log             *logrus.Logger
	calendar        gateway.CalendarClient
	appointmentRepo repository.AppointmentRepository
}

func NewCalendarSync(db *gorm.DB, log *logrus.Logger, calendar gateway.CalendarClient, appointmentRepo repository.AppointmentRepository) CalendarSync {
	return &calendarSync{
		db:              db,
		log:             log,
		calendar:        calendar,
		appointmentRepo: appointmentRepo,
	}
}

func (s *calendarSync) Created(ctx context.Context, tenant *entity.Tenant, appointment *entity.Appointment) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), calendarTimeout)
	defer cancel()

	eventID, err := s.calendar.CreateEvent(ctx, calendarEvent(tenant, appointment))
	if err != nil {
		s.log.Errorf("Failed to create calendar event for appointment %s: %+v", appointment.ID, err)
		return
	}
	if eventID == "" {
		return
	}

	if err := s.appointmentRepo.SetCalendarEventID(s.db.WithContext(ctx), appointment.ID, eventID); err != nil {
		s.log.Errorf("Failed to store calendar event id for appointment %s: %+v", appointment.ID, err)
		return
	}
	appointment.CalendarEventID = eventID
}

func (s *calendarSync) Updated(ctx context.Context, tenant *entity.Tenant, appointment *entity.Appointment) {
	if appointment.CalendarEventID == "" {
		s.Created(ctx, tenant, appointment)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), calendarTimeout)
	defer cancel()

	if err := s.calendar.UpdateEvent(ctx, appointment.CalendarEventID, calendarEvent(tenant, appointment)); err != nil {
		s.log.Errorf("Failed to update calendar event %s: %+v", appointment.CalendarEventID, err)
	}
}

func (s *calendarSync) Cancelled(ctx context.Context, appointment *entity.Appointment) {
	if appointment.CalendarEventID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), calendarTimeout)
	defer cancel()

	if err := s.calendar.DeleteEvent(ctx, appointment.CalendarEventID); err != nil {
		s.log.Errorf("Failed to delete calendar event %s: %+v", appointment.CalendarEventID, err)
	}
}

func calendarEvent(tenant *entity.Tenant, a *entity.Appointment) gateway.CalendarEvent {
	title := "Appointment"
	if a.Service != nil {
		title = a.Service.Name
	}
	if a.Client != nil {
		title = fmt.Sprintf("%s with %s", title, a.Client.FullName)
	}

	var attendees []string
	if a.Client != nil && a.Client.Email != "" {
		attendees = append(attendees, a.Client.Email)
	}
	if a.Provider != nil && a.Provider.Email != "" {
		attendees = append(attendees, a.Provider.Email)
	}

	tz := "UTC"
	if tenant != nil && tenant.Timezone != "" {
		tz = tenant.Timezone
	}

	return gateway.CalendarEvent{
		Title:       title,
		Description: a.Notes,
		Start:       a.StartTime,
		End:         a.EndTime,
		Timezone:    tz,
		Attendees:   attendees,
		Reference:   a.BookingCode,
	}
}
