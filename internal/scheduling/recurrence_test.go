package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
}

func dates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format("2006-01-02")
	}
	return out
}

func TestExpandWeeklyMonWedFri(t *testing.T) {
	rule := Rule{
		Start:      day(2025, 1, 1, 9, 0),
		Frequency:  FrequencyWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Count:      5,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-03", "2025-01-06", "2025-01-08", "2025-01-10"}, dates(got))
	for _, occ := range got {
		assert.Equal(t, 9, occ.Hour())
	}
}

func TestExpandBiweeklySkipsAlternateWeeks(t *testing.T) {
	rule := Rule{
		Start:      day(2025, 1, 1, 10, 30),
		Frequency:  FrequencyBiweekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
		Count:      4,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-13", "2025-01-15", "2025-01-27"}, dates(got))
}

func TestExpandWeeklyWithoutDaysUsesStartWeekday(t *testing.T) {
	rule := Rule{
		Start:     day(2025, 3, 4, 8, 0),
		Frequency: FrequencyWeekly,
		Interval:  2,
		Count:     3,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-04", "2025-03-18", "2025-04-01"}, dates(got))
}

func TestExpandDailyStopsAtUntil(t *testing.T) {
	until := day(2025, 1, 7, 0, 0)
	rule := Rule{
		Start:     day(2025, 1, 1, 14, 0),
		Frequency: FrequencyDaily,
		Interval:  3,
		Until:     &until,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-04", "2025-01-07"}, dates(got))
}

func TestExpandMonthlySkipsMonthsWithoutTheDay(t *testing.T) {
	rule := Rule{
		Start:      day(2025, 1, 31, 9, 0),
		Frequency:  FrequencyMonthly,
		Interval:   1,
		DayOfMonth: 31,
		Count:      6,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-31", "2025-03-31", "2025-05-31", "2025-07-31", "2025-08-31", "2025-10-31"}, dates(got))
	for _, occurrence := range got {
		assert.Equal(t, 31, occurrence.Day())
	}
}

func TestExpandMonthlyStopsAtUntilWhenNoMonthMatches(t *testing.T) {
	until := day(2025, 7, 31, 0, 0)
	rule := Rule{
		Start:      day(2025, 2, 1, 9, 0),
		Frequency:  FrequencyMonthly,
		Interval:   2,
		DayOfMonth: 31,
		Until:      &until,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpandMonthlyDaySkipsFirstCycleBeforeStart(t *testing.T) {
	rule := Rule{
		Start:      day(2025, 1, 20, 9, 0),
		Frequency:  FrequencyMonthly,
		Interval:   1,
		DayOfMonth: 5,
		Count:      2,
	}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-05", "2025-03-05"}, dates(got))
}

func TestExpandQuarterlyAndYearly(t *testing.T) {
	quarterly, err := Expand(Rule{Start: day(2024, 11, 15, 9, 0), Frequency: FrequencyQuarterly, Interval: 1, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11-15", "2025-02-15", "2025-05-15"}, dates(quarterly))

	until := day(2028, 12, 31, 0, 0)
	yearly, err := Expand(Rule{Start: day(2024, 2, 29, 9, 0), Frequency: FrequencyYearly, Interval: 1, Count: 2, Until: &until})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-29", "2028-02-29"}, dates(yearly))
}

func TestExpandDefaults(t *testing.T) {
	rule := Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyDaily, Interval: 1}

	got, err := Expand(rule)
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxOccurrences)

	sparse := Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyMonthly, Interval: 6, Count: 100}
	got, err = Expand(sparse)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-07-01", "2026-01-01", "2026-07-01", "2027-01-01"}, dates(got))
}

func TestExpandProperties(t *testing.T) {
	until := day(2025, 8, 1, 0, 0)
	rules := []Rule{
		{Start: day(2025, 1, 2, 9, 0), Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []time.Weekday{time.Tuesday, time.Thursday}, Count: 30},
		{Start: day(2025, 1, 2, 9, 0), Frequency: FrequencyBiweekly, Interval: 2, DaysOfWeek: []time.Weekday{time.Saturday}, Until: &until},
		{Start: day(2025, 1, 2, 9, 0), Frequency: FrequencyDaily, Interval: 5, Until: &until, Count: 10},
		{Start: day(2025, 1, 2, 9, 0), Frequency: FrequencyMonthly, Interval: 1, DayOfMonth: 30, Until: &until},
	}

	for _, rule := range rules {
		t.Run(string(rule.Frequency), func(t *testing.T) {
			got, err := Expand(rule)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), rule.EffectiveCount())
			for i, occ := range got {
				assert.False(t, occ.Before(rule.Start))
				assert.False(t, dateOf(occ).After(rule.EffectiveUntil()))
				if i > 0 {
					assert.True(t, occ.After(got[i-1]), "occurrences must be strictly increasing")
				}
				if len(rule.DaysOfWeek) > 0 {
					assert.Contains(t, rule.DaysOfWeek, occ.Weekday())
				}
			}
		})
	}
}

func TestInitialOccurrencesAppliesBatchAndWindow(t *testing.T) {
	daily := Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyDaily, Interval: 1, Count: 100}
	got, err := InitialOccurrences(daily)
	require.NoError(t, err)
	assert.Len(t, got, InitialBatchSize)

	weekly := Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyWeekly, Interval: 1, Count: 100}
	got, err = InitialOccurrences(weekly)
	require.NoError(t, err)
	assert.Len(t, got, 13)
	assert.Equal(t, "2025-03-26", got[len(got)-1].Format("2006-01-02"))
}

func TestNextOccurrencesContinuesAfterLast(t *testing.T) {
	rule := Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyDaily, Interval: 1, Count: 25}

	first, err := InitialOccurrences(rule)
	require.NoError(t, err)
	require.Len(t, first, 20)

	next, err := NextOccurrences(rule, first[len(first)-1], 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-21", "2025-01-22", "2025-01-23", "2025-01-24", "2025-01-25"}, dates(next))

	done, err := NextOccurrences(rule, next[len(next)-1], 20)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		err  error
	}{
		{"unknown frequency", Rule{Frequency: "HOURLY", Interval: 1}, ErrUnknownFrequency},
		{"zero interval", Rule{Frequency: FrequencyDaily}, ErrInvalidInterval},
		{"bad weekday", Rule{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []time.Weekday{7}}, ErrInvalidWeekday},
		{"bad month day", Rule{Frequency: FrequencyMonthly, Interval: 1, DayOfMonth: 32}, ErrInvalidMonthDay},
		{"negative count", Rule{Frequency: FrequencyDaily, Interval: 1, Count: -1}, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.rule.Validate(), tt.err)
		})
	}
}

func TestExpandUntilBeforeStartIsEmpty(t *testing.T) {
	until := day(2024, 12, 31, 0, 0)
	got, err := Expand(Rule{Start: day(2025, 1, 1, 9, 0), Frequency: FrequencyWeekly, Interval: 1, Until: &until})
	require.NoError(t, err)
	assert.Empty(t, got)
}
