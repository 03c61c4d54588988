package reminder

import (
	"testing"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"
)

func baseSet() model.ReminderSet {
	return model.ReminderSet{
		ID:       "set-1",
		Enabled:  true,
		Hours:    []int{9},
		Interval: model.IntervalHour,
	}
}

func times(reminders []model.Reminder) []string {
	var out []string
	for _, r := range reminders {
		out = append(out, r.Time.String())
	}
	return out
}

func assertTimes(t *testing.T, got []model.Reminder, want []string) {
	t.Helper()
	gotTimes := times(got)
	if len(gotTimes) != len(want) {
		t.Fatalf("expanded times = %v, want %v", gotTimes, want)
	}
	for i := range want {
		if gotTimes[i] != want[i] {
			t.Errorf("times[%d] = %s, want %s (full: %v)", i, gotTimes[i], want[i], gotTimes)
		}
	}
}

func TestExpandDisabledSetIsEmpty(t *testing.T) {
	set := baseSet()
	set.Enabled = false

	if got := Expand(set); len(got) != 0 {
		t.Errorf("disabled set expanded to %d reminders, want 0", len(got))
	}
}

func TestExpandHourlyTopOfHourOnly(t *testing.T) {
	set := baseSet()
	set.Hours = []int{8, 20}

	assertTimes(t, Expand(set), []string{"08:00", "20:00"})
}

func TestExpandHoursSortedAscending(t *testing.T) {
	set := baseSet()
	set.Hours = []int{21, 7, 13}

	assertTimes(t, Expand(set), []string{"07:00", "13:00", "21:00"})
}

func TestExpandHalfHour(t *testing.T) {
	set := baseSet()
	set.ShowHalfHour = true

	assertTimes(t, Expand(set), []string{"09:00", "09:30"})
}

func TestExpandQuarterHourInterval(t *testing.T) {
	set := baseSet()
	set.Interval = model.IntervalQuarterHour

	assertTimes(t, Expand(set), []string{"09:00", "09:15", "09:30", "09:45"})
}

func TestExpandHalfHourAndIntervalOverlapKeepsDuplicate(t *testing.T) {
	// Half-hour emission and a 30-minute interval both produce :30. The
	// expansion layer keeps both; dedup happens where schedules are keyed.
	set := baseSet()
	set.Hours = []int{8, 9}
	set.ShowHalfHour = true
	set.Interval = model.IntervalHalfHour

	assertTimes(t, Expand(set), []string{
		"08:00", "08:30", "08:30",
		"09:00", "09:30", "09:30",
	})
}

func TestExpandSnapshotsWeekdayFilter(t *testing.T) {
	set := baseSet()
	set.Days = clock.Weekend
	set.FilterActive = true

	reminders := Expand(set)
	if len(reminders) == 0 {
		t.Fatal("expected reminders")
	}

	// Mutate the set after expansion; reminders keep the snapshot.
	set.Days = clock.Weekdays
	set.FilterActive = false

	for _, r := range reminders {
		if r.Days != clock.Weekend || !r.FilterActive {
			t.Errorf("reminder %s filter = (%v, %v), want snapshot (Weekend, true)", r.ID, r.Days, r.FilterActive)
		}
		if r.SetID != "set-1" {
			t.Errorf("reminder %s SetID = %q, want set-1", r.ID, r.SetID)
		}
	}
}

func TestExpandIDsAreStable(t *testing.T) {
	set := baseSet()
	set.ShowHalfHour = true

	first := Expand(set)
	second := Expand(set)

	if len(first) != len(second) {
		t.Fatalf("expansion sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ID[%d] differs across expansions: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}

	if got := ID("set-1", clock.TimeOfDay{Hour: 9, Minute: 30}); got != "set-1_0930" {
		t.Errorf("ID = %q, want set-1_0930", got)
	}
}
