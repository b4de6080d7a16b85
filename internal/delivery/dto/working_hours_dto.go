package dto

import "github.com/google/uuid"

type WorkingHoursEntry struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

// ReplaceWorkingHoursRequest replaces the whole weekly schedule. An empty
// list clears it.
type ReplaceWorkingHoursRequest struct {
	Hours []WorkingHoursEntry `json:"hours" validate:"max=50,dive"`
}

type WorkingHoursResponse struct {
	ProviderID uuid.UUID           `json:"provider_id"`
	Timezone   string              `json:"timezone"`
	Hours      []WorkingHoursEntry `json:"hours"`
}
