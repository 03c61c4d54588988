package model

import (
	"time"

	"github.com/dukerupert/chime/internal/clock"
)

// Repeat intervals supported by reminder sets, in minutes.
const (
	IntervalQuarterHour = 15
	IntervalHalfHour    = 30
	IntervalHour        = 60
)

// ValidInterval reports whether m is a supported repeat interval.
func ValidInterval(m int) bool {
	return m == IntervalQuarterHour || m == IntervalHalfHour || m == IntervalHour
}

// ReminderSet is the stored configuration a user edits. The concrete
// per-minute reminders it stands for are derived on demand, never persisted.
type ReminderSet struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Enabled      bool             `json:"enabled"`
	Hours        []int            `json:"hours"`
	ShowHalfHour bool             `json:"show_half_hour"`
	Interval     int              `json:"interval"`
	Days         clock.WeekdaySet `json:"days"`
	FilterActive bool             `json:"filter_active"`
	Beep         bool             `json:"beep"`
	Speech       bool             `json:"speech"`
	Ringtone     bool             `json:"ringtone"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Filter returns the weekday filter in resolver form (nil = no filter).
func (s ReminderSet) Filter() *clock.WeekdaySet {
	if !s.FilterActive {
		return nil
	}
	days := s.Days
	return &days
}

// Reminder is one expanded instance of a ReminderSet. SetID is a lookup key
// back to the owning set, not a live link; the weekday filter is a snapshot
// taken at expansion time.
type Reminder struct {
	ID           string           `json:"id"`
	SetID        string           `json:"set_id"`
	Time         clock.TimeOfDay  `json:"time"`
	Days         clock.WeekdaySet `json:"days"`
	FilterActive bool             `json:"filter_active"`
}

// Filter returns the snapshot weekday filter in resolver form.
func (r Reminder) Filter() *clock.WeekdaySet {
	if !r.FilterActive {
		return nil
	}
	days := r.Days
	return &days
}
