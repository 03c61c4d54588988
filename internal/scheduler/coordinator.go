// Package scheduler rebuilds the pending notification schedule from the
// stored alarms and reminder sets, and runs the loop that fires due
// schedules.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/chime/internal/alarm"
	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/notify"
	"github.com/dukerupert/chime/internal/recurrence"
	"github.com/dukerupert/chime/internal/reminder"

	"go.uber.org/multierr"
)

// ScheduleRequest is one (id, fire instant, payload) triple the coordinator
// derived and submitted.
type ScheduleRequest struct {
	ID      string
	FireAt  time.Time
	Payload notify.Payload
}

// Coordinator derives the full schedule set and submits it to the delivery
// service. It never diffs: every rebuild cancels everything and re-submits
// from scratch.
type Coordinator struct {
	delivery notify.Delivery
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator over the given delivery service.
func NewCoordinator(delivery notify.Delivery, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{delivery: delivery, logger: logger}
}

// RescheduleAll cancels every pending schedule, then derives and submits one
// request per enabled alarm and per expanded reminder of every enabled set.
//
// Entities with no resolvable occurrence are silently omitted. Requests are
// deduplicated by identifier, so the half-hour/interval overlap in reminder
// expansion collapses to a single schedule. A failed submit is recorded and
// reported per entity; it never aborts the rest of the rebuild.
func (c *Coordinator) RescheduleAll(alarms []model.Alarm, sets []model.ReminderSet, now time.Time, loc *time.Location) ([]ScheduleRequest, error) {
	var errs error

	if err := c.delivery.CancelAll(); err != nil {
		// The rebuild replaces schedules id-by-id anyway, so a failed
		// cancel degrades to overlap tolerated by de-duplication.
		errs = multierr.Append(errs, fmt.Errorf("cancel all: %w", err))
	}

	seen := make(map[string]struct{})
	var out []ScheduleRequest

	submit := func(req ScheduleRequest) {
		if _, dup := seen[req.ID]; dup {
			return
		}
		seen[req.ID] = struct{}{}
		if err := c.delivery.Submit(req.ID, req.FireAt, req.Payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("submit %s: %w", req.ID, err))
			return
		}
		out = append(out, req)
	}

	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		fireAt, ok := alarm.NextOccurrence(a, now, loc)
		if !ok {
			continue
		}
		submit(ScheduleRequest{
			ID:     "alarm_" + a.ID,
			FireAt: fireAt,
			Payload: notify.Payload{
				Title: alarmTitle(a),
				Body:  a.Time.String(),
				Tag:   "alarm_" + a.ID,
				Beep:  a.Beep,
				Speak: a.Speech,
			},
		})
	}

	for _, set := range sets {
		if !set.Enabled {
			continue
		}
		for _, r := range reminder.Expand(set) {
			fireAt, ok := recurrence.NextOccurrence(r.Time, r.Filter(), now, loc)
			if !ok {
				continue
			}
			submit(ScheduleRequest{
				ID:     "reminder_" + r.ID,
				FireAt: fireAt,
				Payload: notify.Payload{
					Title: reminderTitle(set),
					Body:  r.Time.String(),
					Tag:   "reminder_" + r.ID,
					Beep:  set.Beep,
					Speak: set.Speech,
				},
			})
		}
	}

	c.logger.Debug("schedule rebuilt", "requests", len(out))
	return out, errs
}

func alarmTitle(a model.Alarm) string {
	if a.Label != "" {
		return a.Label
	}
	return "Alarm"
}

func reminderTitle(set model.ReminderSet) string {
	if set.Label != "" {
		return set.Label
	}
	return "Reminder"
}
