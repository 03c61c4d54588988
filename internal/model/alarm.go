package model

import (
	"time"

	"github.com/dukerupert/chime/internal/clock"
)

type Alarm struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Time         clock.TimeOfDay  `json:"time"`
	Enabled      bool             `json:"enabled"`
	Days         clock.WeekdaySet `json:"days"`
	FilterActive bool             `json:"filter_active"`
	Beep         bool             `json:"beep"`
	Speech       bool             `json:"speech"`
	Ringtone     bool             `json:"ringtone"`
	SnoozedUntil *time.Time       `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Filter returns the weekday filter as the resolver expects it: nil when the
// filter is inactive (fires every day), a set otherwise. An active empty set
// means the alarm never fires.
func (a Alarm) Filter() *clock.WeekdaySet {
	if !a.FilterActive {
		return nil
	}
	days := a.Days
	return &days
}
