package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	assert.Equal(t, PreferMorning, BucketOf(day(2025, 5, 1, 11, 59)))
	assert.Equal(t, PreferAfternoon, BucketOf(day(2025, 5, 1, 12, 0)))
	assert.Equal(t, PreferAfternoon, BucketOf(day(2025, 5, 1, 16, 59)))
	assert.Equal(t, PreferEvening, BucketOf(day(2025, 5, 1, 17, 0)))
}

func TestPreferenceAccepts(t *testing.T) {
	service := uuid.New()
	provider := uuid.New()
	other := uuid.New()
	preferred := day(2025, 5, 2, 0, 0)
	slot := Slot{ProviderID: provider, ServiceID: service, Start: day(2025, 5, 2, 14, 0), End: day(2025, 5, 2, 15, 0)}

	tests := []struct {
		name string
		pref Preference
		want bool
	}{
		{"any time, no date", Preference{ServiceID: service, TimeOfDay: PreferAny}, true},
		{"same date afternoon", Preference{ServiceID: service, PreferredDate: &preferred, TimeOfDay: PreferAfternoon}, true},
		{"wrong bucket", Preference{ServiceID: service, TimeOfDay: PreferMorning}, false},
		{"other date", Preference{ServiceID: service, PreferredDate: ptr(day(2025, 5, 3, 0, 0))}, false},
		{"other date but flexible", Preference{ServiceID: service, PreferredDate: ptr(day(2025, 5, 3, 0, 0)), FlexibleDates: true}, true},
		{"other provider", Preference{ServiceID: service, ProviderID: &other}, false},
		{"same provider", Preference{ServiceID: service, ProviderID: &provider}, true},
		{"other service", Preference{ServiceID: other}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pref.Accepts(slot, time.UTC))
		})
	}
}

func TestPreferenceAcceptsUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	slot := Slot{ProviderID: uuid.New(), Start: day(2025, 5, 2, 1, 0)}

	pref := Preference{TimeOfDay: PreferMorning}
	assert.True(t, pref.Accepts(slot, loc))

	pref.TimeOfDay = PreferEvening
	assert.True(t, pref.Accepts(slot, time.FixedZone("UTC-7", -7*3600)))
}

func TestMatchWaitlistMarksEachEntryOnce(t *testing.T) {
	service := uuid.New()
	now := day(2025, 5, 1, 8, 0)
	slots := []Slot{
		{ProviderID: uuid.New(), ServiceID: service, Start: day(2025, 5, 2, 9, 0)},
		{ProviderID: uuid.New(), ServiceID: service, Start: day(2025, 5, 2, 10, 0)},
		{ProviderID: uuid.New(), ServiceID: service, Start: day(2025, 5, 2, 18, 0)},
	}

	morning := Candidate{ID: uuid.New(), Preference: Preference{ServiceID: service, TimeOfDay: PreferMorning}}
	evening := Candidate{ID: uuid.New(), Preference: Preference{ServiceID: service, TimeOfDay: PreferEvening}}
	afternoon := Candidate{ID: uuid.New(), Preference: Preference{ServiceID: service, TimeOfDay: PreferAfternoon}}
	expired := Candidate{ID: uuid.New(), Preference: Preference{ServiceID: service}, ExpiresAt: ptr(day(2025, 4, 30, 0, 0))}

	res := MatchWaitlist([]Candidate{morning, evening, afternoon, expired}, slots, time.UTC, now)

	if assert.Len(t, res.Matched, 2) {
		assert.Equal(t, morning.ID, res.Matched[0].CandidateID)
		assert.Equal(t, slots[0], res.Matched[0].Slot)
		assert.Equal(t, evening.ID, res.Matched[1].CandidateID)
		assert.Equal(t, slots[2], res.Matched[1].Slot)
	}
	assert.Equal(t, []uuid.UUID{expired.ID}, res.Expired)
}

func ptr[T any](v T) *T {
	return &v
}
