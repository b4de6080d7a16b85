package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, duration time.Duration) Interval {
	return Interval{Start: start, End: start.Add(duration)}
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two ranges share any instant. It covers the
// candidate starting inside the other range, ending inside it, or
// enclosing it; touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Occupied is an existing booking of a provider.
type Occupied struct {
	ID        uuid.UUID
	Interval  Interval
	Cancelled bool
}

// Conflicts returns the occupied ranges that collide with candidate.
// Cancelled bookings and the booking identified by exclude never conflict.
func Conflicts(candidate Interval, existing []Occupied, exclude uuid.UUID) []Occupied {
	var out []Occupied
	for _, o := range existing {
		if o.Cancelled {
			continue
		}
		if exclude != uuid.Nil && o.ID == exclude {
			continue
		}
		if candidate.Overlaps(o.Interval) {
			out = append(out, o)
		}
	}
	return out
}
