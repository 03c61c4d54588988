package speech

import (
	"testing"
)

func TestRenderFull(t *testing.T) {
	tests := []struct {
		hour, minute int
		speakAmPm    bool
		want         string
	}{
		{10, 0, true, "10 o'clock AM"},
		{0, 5, true, "12 oh 5 AM"},
		{13, 45, true, "1 45 PM"},
		{12, 0, true, "12 o'clock PM"},
		{23, 59, true, "11 59 PM"},
		{10, 0, false, "10 o'clock"},
		{18, 15, false, "6 15"},
	}

	for _, tt := range tests {
		got := Render(tt.hour, tt.minute, FormatFull, tt.speakAmPm, "")
		if got != tt.want {
			t.Errorf("Render(%d, %d, Full, %v) = %q, want %q", tt.hour, tt.minute, tt.speakAmPm, got, tt.want)
		}
	}
}

func TestRenderHourOnlyIgnoresMinute(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{9, 0, "9 o'clock AM"},
		{9, 42, "9 o'clock AM"},
		{0, 30, "12 o'clock AM"},
		{15, 1, "3 o'clock PM"},
	}

	for _, tt := range tests {
		got := Render(tt.hour, tt.minute, FormatHourOnly, true, "")
		if got != tt.want {
			t.Errorf("Render(%d, %d, HourOnly) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestRenderMinutesOnly(t *testing.T) {
	tests := []struct {
		minute int
		want   string
	}{
		{0, "zero minutes"},
		{1, "one minute"},
		{5, "oh 5 minutes"},
		{30, "30 minutes"},
		{59, "59 minutes"},
	}

	for _, tt := range tests {
		got := Render(14, tt.minute, FormatMinutesOnly, true, "")
		if got != tt.want {
			t.Errorf("Render(14, %d, MinutesOnly) = %q, want %q", tt.minute, got, tt.want)
		}
	}
}

func TestRenderCustomTemplate(t *testing.T) {
	tests := []struct {
		name         string
		hour, minute int
		speakAmPm    bool
		template     string
		want         string
	}{
		{"ampm suppressed leaves no trailing space", 9, 0, false, "%H:%M %A", "9:oh 0"},
		{"ampm spoken", 9, 0, true, "%H:%M %A", "9:oh 0 AM"},
		{"interior whitespace collapsed", 14, 30, false, "It is  %H  %M  %A now", "It is 2 30 now"},
		{"placeholders repeat", 7, 5, true, "%H %H %A", "7 7 AM"},
		{"unknown placeholders pass through", 7, 5, true, "%X %H %Z", "%X 7 %Z"},
		{"plain text untouched", 7, 5, true, "time check", "time check"},
	}

	for _, tt := range tests {
		got := Render(tt.hour, tt.minute, FormatCustom, tt.speakAmPm, tt.template)
		if got != tt.want {
			t.Errorf("%s: Render = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRenderCustomEmptyFallsBackToFull(t *testing.T) {
	if got := Render(10, 0, FormatCustom, true, ""); got != "10 o'clock AM" {
		t.Errorf("empty template: got %q, want full phrase", got)
	}
	// A template that substitutes away to nothing behaves the same
	if got := Render(10, 0, FormatCustom, false, "%A"); got != "10 o'clock" {
		t.Errorf("vanishing template: got %q, want full phrase", got)
	}
}

func TestRenderTotalAndNonEmpty(t *testing.T) {
	formats := []Format{FormatFull, FormatHourOnly, FormatMinutesOnly, FormatCustom}
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			for _, f := range formats {
				for _, ampm := range []bool{true, false} {
					got := Render(hour, minute, f, ampm, "%H %M")
					if got == "" {
						t.Fatalf("Render(%d, %d, %v, %v) returned empty", hour, minute, f, ampm)
					}
				}
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := Render(16, 20, FormatFull, true, "")
	b := Render(16, 20, FormatFull, true, "")
	if a != b {
		t.Errorf("renders differ: %q vs %q", a, b)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"full", FormatFull},
		{"hour_only", FormatHourOnly},
		{"minutes_only", FormatMinutesOnly},
		{"custom", FormatCustom},
		{"", FormatFull},
		{"garbage", FormatFull},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
