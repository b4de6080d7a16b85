package entity

import (
	"time"

	"go-appointment-saas/internal/scheduling"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecurringAppointmentTemplate generates a series of appointments
type RecurringAppointmentTemplate struct {
	ID               uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID                `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProviderID       uuid.UUID                `gorm:"type:uuid;not null;index" json:"provider_id"`
	ClientID         uuid.UUID                `gorm:"type:uuid;not null;index" json:"client_id"`
	ServiceID        uuid.UUID                `gorm:"type:uuid;not null" json:"service_id"`
	Frequency        scheduling.Frequency     `gorm:"type:varchar(20);not null" json:"frequency"`
	Interval         int                      `gorm:"column:repeat_interval;not null;default:1" json:"interval"`
	DaysOfWeek       datatypes.JSONSlice[int] `json:"days_of_week,omitempty"`
	DayOfMonth       int                      `gorm:"not null;default:0" json:"day_of_month,omitempty"`
	StartDate        datatypes.Date           `gorm:"not null" json:"start_date"`
	EndDate          *datatypes.Date          `json:"end_date,omitempty"`
	TimeOfDay        string                   `gorm:"type:varchar(5);not null" json:"time_of_day"`
	DurationMinutes  int                      `gorm:"not null" json:"duration_minutes"`
	MaxOccurrences   int                      `gorm:"not null;default:0" json:"max_occurrences,omitempty"`
	GeneratedCount   int                      `gorm:"not null;default:0" json:"generated_count"`
	LastOccurrenceAt *time.Time               `json:"last_occurrence_at,omitempty"`
	Notes            string                   `gorm:"type:text" json:"notes,omitempty"`
	IsActive         *bool                    `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt        time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Provider     *User         `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Client       *User         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Service      *Service      `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:RecurringTemplateID" json:"appointments,omitempty"`
}

func (RecurringAppointmentTemplate) TableName() string {
	return "recurring_appointment_templates"
}

func (t *RecurringAppointmentTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *RecurringAppointmentTemplate) Active() bool {
	return t.IsActive == nil || *t.IsActive
}

func (t *RecurringAppointmentTemplate) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Rule builds the recurrence rule in loc, the tenant's timezone.
func (t *RecurringAppointmentTemplate) Rule(loc *time.Location) (scheduling.Rule, error) {
	clock, err := scheduling.ParseClock(t.TimeOfDay)
	if err != nil {
		return scheduling.Rule{}, err
	}
	y, m, d := time.Time(t.StartDate).Date()
	rule := scheduling.Rule{
		Start:      time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc),
		Frequency:  t.Frequency,
		Interval:   t.Interval,
		DayOfMonth: t.DayOfMonth,
		Count:      t.MaxOccurrences,
	}
	for _, wd := range t.DaysOfWeek {
		rule.DaysOfWeek = append(rule.DaysOfWeek, time.Weekday(wd))
	}
	if t.EndDate != nil {
		ey, em, ed := time.Time(*t.EndDate).Date()
		until := time.Date(ey, em, ed, 0, 0, 0, 0, loc)
		rule.Until = &until
	}
	return rule, nil
}
