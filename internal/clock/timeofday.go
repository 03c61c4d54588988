package clock

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock (hour, minute) pair. It never carries a date; a
// date and location are supplied when it is resolved to an instant.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// NewTimeOfDay validates hour and minute ranges.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("hour %d out of range [0,23]", hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("minute %d out of range [0,59]", minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// FromInstant extracts the wall-clock time of t in its own location.
func FromInstant(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// String formats as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesSinceMidnight returns the offset from 00:00 in minutes.
func (t TimeOfDay) MinutesSinceMidnight() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinutesSinceMidnight() < other.MinutesSinceMidnight()
}

// Equal reports whether both values name the same wall-clock time.
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t.Hour == other.Hour && t.Minute == other.Minute
}
