package clock

import (
	"strings"
	"time"
)

// Weekday is a day of the week with a stable ordinal (1=Sunday .. 7=Saturday).
// The ordinal is what gets persisted, so the values here must never change.
type Weekday int

const (
	Sunday Weekday = 1 + iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

// Valid reports whether d is one of the seven defined weekdays.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return "Weekday(?)"
	}
	return weekdayNames[d]
}

// FromTime converts a time.Weekday (0=Sunday) to a Weekday (1=Sunday).
func FromTime(wd time.Weekday) Weekday {
	return Weekday(int(wd) + 1)
}

// Time converts d back to the stdlib representation.
func (d Weekday) Time() time.Weekday {
	return time.Weekday(int(d) - 1)
}

// WeekdaySet is a set of weekdays stored as a bitmask. The zero value is the
// empty set. Being a plain value type, sets compare with ==.
type WeekdaySet uint8

// Precomputed sets for the common firing patterns.
var (
	Everyday = NewWeekdaySet(Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday)
	Weekdays = NewWeekdaySet(Monday, Tuesday, Wednesday, Thursday, Friday)
	Weekend  = NewWeekdaySet(Saturday, Sunday)
)

// NewWeekdaySet builds a set from the given days. Invalid days are ignored.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Add returns the set with d included.
func (s WeekdaySet) Add(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d-1)
}

// Remove returns the set with d excluded.
func (s WeekdaySet) Remove(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s &^ 1 << uint(d-1)
}

// Contains reports whether d is a member of the set.
func (s WeekdaySet) Contains(d Weekday) bool {
	if !d.Valid() {
		return false
	}
	return s&(1<<uint(d-1)) != 0
}

// IsEmpty reports whether the set has no members.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Count returns the number of days in the set.
func (s WeekdaySet) Count() int {
	n := 0
	for d := Sunday; d <= Saturday; d++ {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

// Days returns the members in canonical ordinal order (Sunday first).
func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for d := Sunday; d <= Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) String() string {
	switch s {
	case Everyday:
		return "every day"
	case Weekdays:
		return "weekdays"
	case Weekend:
		return "weekends"
	}
	if s.IsEmpty() {
		return "never"
	}
	var names []string
	for _, d := range s.Days() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ", ")
}

// Mask returns the raw bitmask for persistence.
func (s WeekdaySet) Mask() int {
	return int(s)
}

// FromMask rebuilds a set from a persisted bitmask, dropping unknown bits.
func FromMask(mask int) WeekdaySet {
	return WeekdaySet(mask) & Everyday
}
