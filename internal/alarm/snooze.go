// Package alarm layers per-alarm snooze state on top of the recurrence
// resolver. Snooze expiry is lazy: state is a pure function of the stored
// SnoozedUntil instant and the clock at read time, never a background timer.
package alarm

import (
	"time"

	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/recurrence"
)

// DefaultSnooze is the fallback applied when a caller passes a non-positive
// snooze duration. Per-install overrides come from settings.
const DefaultSnooze = 10 * time.Minute

// SnoozeState is the observable state of an alarm's snooze machine.
type SnoozeState int

const (
	// SnoozeIdle means the alarm fires on its configured recurrence.
	SnoozeIdle SnoozeState = iota
	// SnoozeActive means a snooze override is pending.
	SnoozeActive
)

func (s SnoozeState) String() string {
	switch s {
	case SnoozeIdle:
		return "idle"
	case SnoozeActive:
		return "snoozed"
	}
	return "unknown"
}

// Snooze arms the snooze override for d past now. Non-positive durations
// mean "use the default", not an error.
func Snooze(a *model.Alarm, d time.Duration, now time.Time) {
	if d <= 0 {
		d = DefaultSnooze
	}
	until := now.Add(d)
	a.SnoozedUntil = &until
}

// Dismiss clears any snooze override. Legal in every state.
func Dismiss(a *model.Alarm) {
	a.SnoozedUntil = nil
}

// State reads the snooze machine at `now`. An elapsed SnoozedUntil reads as
// idle; the stored field is left alone so State stays side-effect free.
func State(a model.Alarm, now time.Time) (SnoozeState, time.Time) {
	if a.SnoozedUntil != nil && a.SnoozedUntil.After(now) {
		return SnoozeActive, *a.SnoozedUntil
	}
	return SnoozeIdle, time.Time{}
}

// NextOccurrence resolves the alarm's next fire instant after `now`. An
// unexpired snooze IS the next occurrence and bypasses the recurrence
// resolver; otherwise the configured time and weekday filter decide.
func NextOccurrence(a model.Alarm, now time.Time, loc *time.Location) (time.Time, bool) {
	if state, until := State(a, now); state == SnoozeActive {
		return until, true
	}
	return recurrence.NextOccurrence(a.Time, a.Filter(), now, loc)
}
