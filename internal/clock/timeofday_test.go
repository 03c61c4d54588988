package clock

import (
	"testing"
	"time"
)

func TestNewTimeOfDay(t *testing.T) {
	tod, err := NewTimeOfDay(7, 30)
	if err != nil {
		t.Fatalf("NewTimeOfDay error: %v", err)
	}
	if tod.Hour != 7 || tod.Minute != 30 {
		t.Errorf("got %d:%d, want 7:30", tod.Hour, tod.Minute)
	}
}

func TestNewTimeOfDayRejectsOutOfRange(t *testing.T) {
	tests := []struct{ hour, minute int }{
		{-1, 0},
		{24, 0},
		{0, -1},
		{0, 60},
	}

	for _, tt := range tests {
		if _, err := NewTimeOfDay(tt.hour, tt.minute); err == nil {
			t.Errorf("NewTimeOfDay(%d, %d) should error", tt.hour, tt.minute)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	tests := []struct {
		tod  TimeOfDay
		want string
	}{
		{TimeOfDay{0, 0}, "00:00"},
		{TimeOfDay{7, 5}, "07:05"},
		{TimeOfDay{23, 59}, "23:59"},
	}

	for _, tt := range tests {
		if got := tt.tod.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTimeOfDayComparison(t *testing.T) {
	early := TimeOfDay{8, 0}
	late := TimeOfDay{8, 30}

	if !early.Before(late) {
		t.Error("8:00 should be before 8:30")
	}
	if late.Before(early) {
		t.Error("8:30 should not be before 8:00")
	}
	if !early.Equal(TimeOfDay{8, 0}) {
		t.Error("8:00 should equal 8:00")
	}
	if early.Equal(late) {
		t.Error("8:00 should not equal 8:30")
	}
}

func TestFromInstant(t *testing.T) {
	instant := time.Date(2026, 3, 15, 14, 45, 12, 0, time.UTC)
	tod := FromInstant(instant)
	if tod.Hour != 14 || tod.Minute != 45 {
		t.Errorf("FromInstant = %v, want 14:45", tod)
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	if got := (TimeOfDay{13, 15}).MinutesSinceMidnight(); got != 795 {
		t.Errorf("MinutesSinceMidnight = %d, want 795", got)
	}
}
