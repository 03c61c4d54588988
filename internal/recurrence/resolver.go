// Package recurrence computes the next concrete instant at which a
// wall-clock time recurs, optionally restricted to a set of weekdays.
package recurrence

import (
	"time"

	"github.com/dukerupert/chime/internal/clock"
)

// Day offsets 0..7 cover a full week plus the start day, so a single-day
// filter is always reachable no matter where in the week `after` falls.
const maxDayOffset = 7

// NextOccurrence returns the first instant strictly after `after` at which
// the given wall-clock time occurs in loc.
//
// With a nil filter the time recurs daily: today's candidate if it is still
// ahead, otherwise tomorrow's. With a filter only member weekdays qualify;
// an empty filter never fires. The boolean is false when no occurrence
// exists; that is a soft outcome, not an error.
//
// Candidates are built by civil-date reconstruction (time.Date on the target
// calendar day in loc), never by adding whole days to an instant, so a
// 09:00 alarm still resolves to local 09:00 across a DST transition.
func NextOccurrence(at clock.TimeOfDay, filter *clock.WeekdaySet, after time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	after = after.In(loc)

	if filter == nil {
		candidate := onDay(after, 0, at, loc)
		if candidate.After(after) {
			return candidate, true
		}
		return onDay(after, 1, at, loc), true
	}

	if filter.IsEmpty() {
		return time.Time{}, false
	}

	for offset := 0; offset <= maxDayOffset; offset++ {
		candidate := onDay(after, offset, at, loc)
		if !filter.Contains(clock.FromTime(candidate.Weekday())) {
			continue
		}
		if candidate.After(after) {
			return candidate, true
		}
	}

	return time.Time{}, false
}

// onDay reconstructs the wall-clock time `at` on the calendar day `offset`
// days past base's date in loc. time.Date normalizes the day arithmetic and
// resolves skipped or repeated wall-clock times across zone transitions.
func onDay(base time.Time, offset int, at clock.TimeOfDay, loc *time.Location) time.Time {
	year, month, day := base.Date()
	return time.Date(year, month, day+offset, at.Hour, at.Minute, 0, 0, loc)
}
