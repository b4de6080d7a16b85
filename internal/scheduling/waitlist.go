package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// TimePreference is the part of the day a waitlisted client wants.
type TimePreference string

const (
	PreferAny       TimePreference = "ANY"
	PreferMorning   TimePreference = "MORNING"
	PreferAfternoon TimePreference = "AFTERNOON"
	PreferEvening   TimePreference = "EVENING"
)

// BucketOf classifies t by its hour: morning before 12:00, afternoon until
// 17:00, evening after that.
func BucketOf(t time.Time) TimePreference {
	switch h := t.Hour(); {
	case h < 12:
		return PreferMorning
	case h < 17:
		return PreferAfternoon
	default:
		return PreferEvening
	}
}

// Slot is a freshly available time range of a provider.
type Slot struct {
	ProviderID uuid.UUID
	ServiceID  uuid.UUID
	Start      time.Time
	End        time.Time
}

// Preference is what a waitlist entry is waiting for.
type Preference struct {
	ServiceID     uuid.UUID
	ProviderID    *uuid.UUID
	PreferredDate *time.Time
	FlexibleDates bool
	TimeOfDay     TimePreference
}

// Accepts reports whether slot satisfies the preference. Dates and hours
// are compared in loc.
func (p Preference) Accepts(slot Slot, loc *time.Location) bool {
	if p.ProviderID != nil && *p.ProviderID != slot.ProviderID {
		return false
	}
	if slot.ServiceID != uuid.Nil && p.ServiceID != uuid.Nil && p.ServiceID != slot.ServiceID {
		return false
	}
	if !p.FlexibleDates && p.PreferredDate != nil && !SameDate(*p.PreferredDate, slot.Start, loc) {
		return false
	}
	switch p.TimeOfDay {
	case "", PreferAny:
		return true
	default:
		return BucketOf(slot.Start.In(loc)) == p.TimeOfDay
	}
}

// Candidate is an active waitlist entry considered for matching.
type Candidate struct {
	ID         uuid.UUID
	Preference Preference
	ExpiresAt  *time.Time
}

type Match struct {
	CandidateID uuid.UUID
	Slot        Slot
}

type MatchResult struct {
	Matched []Match
	Expired []uuid.UUID
}

// MatchWaitlist pairs each candidate with the first slot it accepts. A
// candidate appears at most once in the result; candidates past their
// expiry are reported separately and never matched.
func MatchWaitlist(candidates []Candidate, slots []Slot, loc *time.Location, now time.Time) MatchResult {
	var res MatchResult
	for _, c := range candidates {
		if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
			res.Expired = append(res.Expired, c.ID)
			continue
		}
		for _, s := range slots {
			if c.Preference.Accepts(s, loc) {
				res.Matched = append(res.Matched, Match{CandidateID: c.ID, Slot: s})
				break
			}
		}
	}
	return res
}
