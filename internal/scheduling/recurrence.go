package scheduling

import (
	"errors"
	"sort"
	"time"
)

// Frequency is the repeat unit of a recurrence rule.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiweekly  Frequency = "BIWEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

const (
	// DefaultMaxOccurrences caps a rule that has no explicit count.
	DefaultMaxOccurrences = 52
	// DefaultHorizonYears bounds a rule that has no explicit end date.
	DefaultHorizonYears = 2

	// InitialBatchSize and InitialWindowMonths bound the first generation run.
	InitialBatchSize    = 20
	InitialWindowMonths = 3
)

var (
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")
	ErrInvalidInterval  = errors.New("recurrence interval must be at least 1")
	ErrInvalidWeekday   = errors.New("days of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidMonthDay  = errors.New("day of month must be between 1 and 31")
	ErrInvalidCount     = errors.New("max occurrences must not be negative")
)

// Rule describes a repeating appointment. Start carries both the first
// candidate date and the time of day, in the location occurrences are
// generated in. Until is an inclusive calendar date.
type Rule struct {
	Start      time.Time
	Frequency  Frequency
	Interval   int
	DaysOfWeek []time.Weekday
	DayOfMonth int
	Until      *time.Time
	Count      int
}

func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
	default:
		return ErrUnknownFrequency
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	for _, d := range r.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return ErrInvalidWeekday
		}
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return ErrInvalidMonthDay
	}
	if r.Count < 0 {
		return ErrInvalidCount
	}
	return nil
}

// EffectiveCount is the occurrence cap applied to the whole series.
func (r Rule) EffectiveCount() int {
	if r.Count > 0 {
		return r.Count
	}
	return DefaultMaxOccurrences
}

// EffectiveUntil is the last calendar date the series may reach.
func (r Rule) EffectiveUntil() time.Time {
	if r.Until != nil {
		return dateOf(r.Until.In(r.Start.Location()))
	}
	return dateOf(r.Start).AddDate(DefaultHorizonYears, 0, 0)
}

// Expand returns every occurrence of the rule, honoring its count and end date.
func Expand(r Rule) ([]time.Time, error) {
	return ExpandWithin(r, r.EffectiveCount(), r.EffectiveUntil())
}

// InitialOccurrences returns the first batch generated when a series is created.
func InitialOccurrences(r Rule) ([]time.Time, error) {
	limit := r.EffectiveCount()
	if limit > InitialBatchSize {
		limit = InitialBatchSize
	}
	until := r.EffectiveUntil()
	window := dateOf(r.Start).AddDate(0, InitialWindowMonths, 0)
	if window.Before(until) {
		until = window
	}
	return ExpandWithin(r, limit, until)
}

// NextOccurrences returns up to batch occurrences strictly after last,
// counting earlier occurrences against the series cap.
func NextOccurrences(r Rule, last time.Time, batch int) ([]time.Time, error) {
	all, err := Expand(r)
	if err != nil {
		return nil, err
	}
	idx := sort.Search(len(all), func(i int) bool { return all[i].After(last) })
	next := all[idx:]
	if batch > 0 && len(next) > batch {
		next = next[:batch]
	}
	return next, nil
}

// ExpandWithin generates occurrences in ascending order until limit
// occurrences have been produced or the next one would fall after until.
func ExpandWithin(r Rule, limit int, until time.Time) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	until = dateOf(until.In(r.Start.Location()))

	var out []time.Time
	emit := func(t time.Time) bool {
		if dateOf(t).After(until) {
			return false
		}
		out = append(out, t)
		return len(out) < limit
	}

	switch r.Frequency {
	case FrequencyDaily:
		expandDaily(r, emit)
	case FrequencyWeekly:
		expandWeekly(r, r.Interval, until, emit)
	case FrequencyBiweekly:
		expandWeekly(r, 2*r.Interval, until, emit)
	case FrequencyMonthly:
		expandMonthly(r, r.Interval, until, emit)
	case FrequencyQuarterly:
		expandMonthly(r, 3*r.Interval, until, emit)
	case FrequencyYearly:
		expandMonthly(r, 12*r.Interval, until, emit)
	}
	return out, nil
}

func expandDaily(r Rule, emit func(time.Time) bool) {
	for k := 0; ; k++ {
		if !emit(atDay(r.Start, k*r.Interval)) {
			return
		}
	}
}

// expandWeekly walks day by day. Weeks are counted from the Sunday on or
// before the start date; only weeks whose index is a multiple of period
// are eligible.
func expandWeekly(r Rule, period int, until time.Time, emit func(time.Time) bool) {
	days := make(map[time.Weekday]bool, 7)
	for _, d := range r.DaysOfWeek {
		days[d] = true
	}
	if len(days) == 0 {
		days[r.Start.Weekday()] = true
	}

	offset := int(r.Start.Weekday())
	for k := 0; ; k++ {
		t := atDay(r.Start, k)
		if dateOf(t).After(until) {
			return
		}
		week := (offset + k) / 7
		if week%period != 0 || !days[t.Weekday()] {
			continue
		}
		if !emit(t) {
			return
		}
	}
}

// expandMonthly anchors every cycle on the start month so a short month
// never shifts later occurrences. A cycle whose month has no such day
// produces nothing.
func expandMonthly(r Rule, step int, until time.Time, emit func(time.Time) bool) {
	day := r.DayOfMonth
	if day == 0 {
		day = r.Start.Day()
	}
	loc := r.Start.Location()
	for n := 0; ; n++ {
		first := time.Date(r.Start.Year(), r.Start.Month()+time.Month(n*step), 1,
			r.Start.Hour(), r.Start.Minute(), 0, 0, loc)
		if dateOf(first).After(until) {
			return
		}
		if day > daysIn(first.Year(), first.Month(), loc) {
			continue
		}
		t := time.Date(first.Year(), first.Month(), day, first.Hour(), first.Minute(), 0, 0, loc)
		if t.Before(r.Start) {
			continue
		}
		if !emit(t) {
			return
		}
	}
}

func atDay(start time.Time, days int) time.Time {
	return time.Date(start.Year(), start.Month(), start.Day()+days,
		start.Hour(), start.Minute(), 0, 0, start.Location())
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
