package scheduler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/notify"
)

var schedNow = time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC) // a Wednesday

func enabledAlarm(id string, hour, minute int) model.Alarm {
	return model.Alarm{
		ID:      id,
		Time:    clock.TimeOfDay{Hour: hour, Minute: minute},
		Enabled: true,
		Speech:  true,
	}
}

func pendingIDs(r *notify.Registry) []string {
	var ids []string
	for _, s := range r.Pending() {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestRescheduleAllAlarms(t *testing.T) {
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	alarms := []model.Alarm{
		enabledAlarm("a1", 15, 0),
		enabledAlarm("a2", 9, 0), // passed today, resolves to tomorrow
	}

	reqs, err := c.RescheduleAll(alarms, nil, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}

	byID := make(map[string]ScheduleRequest)
	for _, r := range reqs {
		byID[r.ID] = r
	}

	if want := time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC); !byID["alarm_a1"].FireAt.Equal(want) {
		t.Errorf("alarm_a1 fireAt = %v, want %v", byID["alarm_a1"].FireAt, want)
	}
	if want := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC); !byID["alarm_a2"].FireAt.Equal(want) {
		t.Errorf("alarm_a2 fireAt = %v, want %v", byID["alarm_a2"].FireAt, want)
	}
}

func TestRescheduleAllSkipsDisabledAndUnresolvable(t *testing.T) {
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	disabled := enabledAlarm("off", 15, 0)
	disabled.Enabled = false

	neverFires := enabledAlarm("never", 15, 0)
	neverFires.FilterActive = true
	neverFires.Days = clock.WeekdaySet(0)

	reqs, err := c.RescheduleAll([]model.Alarm{disabled, neverFires}, nil, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("requests = %v, want none", reqs)
	}
	if got := len(registry.Pending()); got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}
}

func TestRescheduleAllExpandsReminderSets(t *testing.T) {
	// hours={8,9}, half-hour on, interval=30: the :30 overlap collapses by
	// identifier, leaving exactly 8:00, 8:30, 9:00, 9:30.
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	set := model.ReminderSet{
		ID:           "s1",
		Enabled:      true,
		Hours:        []int{8, 9},
		ShowHalfHour: true,
		Interval:     model.IntervalHalfHour,
		Speech:       true,
	}

	reqs, err := c.RescheduleAll(nil, []model.ReminderSet{set}, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	want := map[string]bool{
		"reminder_s1_0800": true,
		"reminder_s1_0830": true,
		"reminder_s1_0900": true,
		"reminder_s1_0930": true,
	}
	if len(reqs) != len(want) {
		t.Fatalf("requests = %d, want %d", len(reqs), len(want))
	}
	for _, r := range reqs {
		if !want[r.ID] {
			t.Errorf("unexpected request id %q", r.ID)
		}
		// 12:00 reference: every reminder time has passed, so all fire tomorrow
		if r.FireAt.Day() != 15 {
			t.Errorf("%s fireAt = %v, want tomorrow", r.ID, r.FireAt)
		}
	}
}

func TestRescheduleAllIdempotent(t *testing.T) {
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	alarms := []model.Alarm{enabledAlarm("a1", 15, 0)}
	sets := []model.ReminderSet{{
		ID:       "s1",
		Enabled:  true,
		Hours:    []int{8},
		Interval: model.IntervalQuarterHour,
	}}

	first, err := c.RescheduleAll(alarms, sets, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("first reschedule: %v", err)
	}
	second, err := c.RescheduleAll(alarms, sets, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("second reschedule: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("request counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].FireAt.Equal(second[i].FireAt) {
			t.Errorf("request %d differs: (%s, %v) vs (%s, %v)",
				i, first[i].ID, first[i].FireAt, second[i].ID, second[i].FireAt)
		}
	}
}

func TestRescheduleAllRemovesStaleEntries(t *testing.T) {
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	alarms := []model.Alarm{enabledAlarm("a1", 15, 0), enabledAlarm("a2", 16, 0)}
	if _, err := c.RescheduleAll(alarms, nil, schedNow, time.UTC); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	// Delete a2, rebuild: its schedule must not survive
	if _, err := c.RescheduleAll(alarms[:1], nil, schedNow, time.UTC); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ids := pendingIDs(registry)
	if len(ids) != 1 || ids[0] != "alarm_a1" {
		t.Errorf("pending after rebuild = %v, want [alarm_a1]", ids)
	}
}

// failingDelivery fails Submit for one id and passes everything else through.
type failingDelivery struct {
	*notify.Registry
	failID string
}

func (f *failingDelivery) Submit(id string, fireAt time.Time, payload notify.Payload) error {
	if id == f.failID {
		return errors.New("delivery unavailable")
	}
	return f.Registry.Submit(id, fireAt, payload)
}

func TestRescheduleAllReportsSubmitErrorsWithoutAborting(t *testing.T) {
	registry := notify.NewRegistry()
	delivery := &failingDelivery{Registry: registry, failID: "alarm_bad"}
	c := NewCoordinator(delivery, nil)

	alarms := []model.Alarm{
		enabledAlarm("a1", 15, 0),
		enabledAlarm("bad", 16, 0),
		enabledAlarm("a3", 17, 0),
	}

	reqs, err := c.RescheduleAll(alarms, nil, schedNow, time.UTC)
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
	if !strings.Contains(err.Error(), "alarm_bad") {
		t.Errorf("error %q should name the failing entity", err)
	}
	if len(reqs) != 2 {
		t.Errorf("requests = %d, want the 2 that succeeded", len(reqs))
	}

	ids := pendingIDs(registry)
	if len(ids) != 2 {
		t.Errorf("pending = %v, want alarm_a1 and alarm_a3", ids)
	}
}

func TestRescheduleAllSnoozeWins(t *testing.T) {
	registry := notify.NewRegistry()
	c := NewCoordinator(registry, nil)

	a := enabledAlarm("a1", 15, 0)
	until := schedNow.Add(5 * time.Minute)
	a.SnoozedUntil = &until

	reqs, err := c.RescheduleAll([]model.Alarm{a}, nil, schedNow, time.UTC)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if !reqs[0].FireAt.Equal(until) {
		t.Errorf("fireAt = %v, want snooze instant %v", reqs[0].FireAt, until)
	}
}
