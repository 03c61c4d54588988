// Package reminder derives the concrete per-minute reminders a ReminderSet
// stands for.
package reminder

import (
	"fmt"
	"sort"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"
)

// ID returns the stable identifier for the reminder of set at (hour, minute).
// Repeated expansions of the same configuration produce the same IDs, which
// is what lets full rebuilds replace earlier schedules.
func ID(setID string, at clock.TimeOfDay) string {
	return fmt.Sprintf("%s_%02d%02d", setID, at.Hour, at.Minute)
}

// Expand materializes every reminder the set represents. A disabled set
// expands to nothing. For each configured hour, ascending:
//
//   - the top of the hour is always emitted
//   - the half hour is emitted when ShowHalfHour is on
//   - every interval step below 60 is emitted when the interval is sub-hourly
//
// The half-hour and interval emissions can both land on minute 30; that
// duplicate is deliberate and survives here. Consumers key schedules by ID,
// so the duplicate collapses at the scheduling boundary.
//
// Each reminder snapshots the set's weekday filter; editing the set later
// does not reach back into reminders already expanded.
func Expand(set model.ReminderSet) []model.Reminder {
	if !set.Enabled {
		return nil
	}

	hours := make([]int, len(set.Hours))
	copy(hours, set.Hours)
	sort.Ints(hours)

	var out []model.Reminder
	emit := func(hour, minute int) {
		at := clock.TimeOfDay{Hour: hour, Minute: minute}
		out = append(out, model.Reminder{
			ID:           ID(set.ID, at),
			SetID:        set.ID,
			Time:         at,
			Days:         set.Days,
			FilterActive: set.FilterActive,
		})
	}

	for _, hour := range hours {
		emit(hour, 0)
		if set.ShowHalfHour {
			emit(hour, 30)
		}
		if set.Interval > 0 && set.Interval < 60 {
			for minute := set.Interval; minute < 60; minute += set.Interval {
				emit(hour, minute)
			}
		}
	}

	return out
}
