package gateway

import (
	"context"
	"time"
)

// CalendarEvent mirrors an appointment in an external calendar.
type CalendarEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Timezone    string    `json:"timezone"`
	Attendees   []string  `json:"attendees,omitempty"`
	Reference   string    `json:"reference"`
}

// CalendarClient manages events by an opaque id issued on creation.
type CalendarClient interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, id string, event CalendarEvent) error
	DeleteEvent(ctx context.Context, id string) error
}
