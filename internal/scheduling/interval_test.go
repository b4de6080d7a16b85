package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: day(2025, 5, 1, 10, 0), End: day(2025, 5, 1, 11, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"starts inside", Interval{day(2025, 5, 1, 10, 30), day(2025, 5, 1, 11, 30)}, true},
		{"ends inside", Interval{day(2025, 5, 1, 9, 30), day(2025, 5, 1, 10, 15)}, true},
		{"encloses", Interval{day(2025, 5, 1, 9, 0), day(2025, 5, 1, 12, 0)}, true},
		{"inside", Interval{day(2025, 5, 1, 10, 15), day(2025, 5, 1, 10, 45)}, true},
		{"identical", base, true},
		{"touches end", Interval{day(2025, 5, 1, 11, 0), day(2025, 5, 1, 12, 0)}, false},
		{"touches start", Interval{day(2025, 5, 1, 9, 0), day(2025, 5, 1, 10, 0)}, false},
		{"disjoint", Interval{day(2025, 5, 2, 10, 0), day(2025, 5, 2, 11, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestConflictsExcludesCancelledAndSelf(t *testing.T) {
	self := uuid.New()
	busy := uuid.New()
	candidate := NewInterval(day(2025, 5, 1, 10, 0), time.Hour)

	existing := []Occupied{
		{ID: self, Interval: candidate},
		{ID: uuid.New(), Interval: candidate, Cancelled: true},
		{ID: busy, Interval: NewInterval(day(2025, 5, 1, 10, 45), 30*time.Minute)},
		{ID: uuid.New(), Interval: NewInterval(day(2025, 5, 1, 11, 0), 30*time.Minute)},
	}

	got := Conflicts(candidate, existing, self)
	if assert.Len(t, got, 1) {
		assert.Equal(t, busy, got[0].ID)
	}

	assert.Len(t, Conflicts(candidate, existing, uuid.Nil), 2)
}

func TestAvailableSlots(t *testing.T) {
	window := Interval{Start: day(2025, 5, 1, 9, 0), End: day(2025, 5, 1, 12, 0)}
	busy := []Interval{{Start: day(2025, 5, 1, 10, 0), End: day(2025, 5, 1, 10, 30)}}
	now := day(2025, 5, 1, 9, 10)

	got := AvailableSlots(window, 30*time.Minute, 30*time.Minute, busy, now)

	var labels []string
	for _, s := range got {
		labels = append(labels, s.Format("15:04"))
	}
	assert.Equal(t, []string{"09:30", "10:30", "11:00", "11:30"}, labels)
}

func TestAvailableSlotsRejectsBadInput(t *testing.T) {
	window := Interval{Start: day(2025, 5, 1, 9, 0), End: day(2025, 5, 1, 9, 20)}
	assert.Nil(t, AvailableSlots(window, 30*time.Minute, 15*time.Minute, nil, time.Time{}))
	assert.Nil(t, AvailableSlots(window, 0, 15*time.Minute, nil, time.Time{}))
	assert.Nil(t, AvailableSlots(Interval{}, 30*time.Minute, 15*time.Minute, nil, time.Time{}))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:45")
	assert.NoError(t, err)
	assert.Equal(t, "08:45", c.String())
	assert.Equal(t, day(2025, 5, 1, 8, 45), c.On(day(2025, 5, 1, 23, 0), time.UTC))

	_, err = ParseClock("8.45")
	assert.ErrorIs(t, err, ErrInvalidClock)
}
