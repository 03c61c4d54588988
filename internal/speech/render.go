// Package speech renders hour/minute pairs into the phrases the clock
// speaks, and defines the output port announcements are handed to.
package speech

import (
	"strconv"
	"strings"
)

// Format selects the phrase grammar.
type Format int

const (
	// FormatFull speaks hour and minute: "10 o'clock AM", "10 oh 5 AM".
	FormatFull Format = iota
	// FormatHourOnly always speaks the top of the hour, ignoring the minute.
	FormatHourOnly
	// FormatMinutesOnly speaks just the minute: "zero minutes", "30 minutes".
	FormatMinutesOnly
	// FormatCustom substitutes %H, %M and %A in a user template.
	FormatCustom
)

func (f Format) String() string {
	switch f {
	case FormatFull:
		return "full"
	case FormatHourOnly:
		return "hour_only"
	case FormatMinutesOnly:
		return "minutes_only"
	case FormatCustom:
		return "custom"
	}
	return "unknown"
}

// ParseFormat maps a stored settings value to a Format, defaulting to full.
func ParseFormat(s string) Format {
	switch s {
	case "hour_only":
		return FormatHourOnly
	case "minutes_only":
		return FormatMinutesOnly
	case "custom":
		return FormatCustom
	}
	return FormatFull
}

// Render produces the spoken phrase for the given wall-clock time. It is
// pure and total: any hour in [0,23] and minute in [0,59] yields a
// deterministic non-empty string in every format. Custom templates are never
// malformed: unknown placeholders pass through literally.
func Render(hour, minute int, format Format, speakAmPm bool, custom string) string {
	display := displayHour(hour)
	marker := ""
	if speakAmPm {
		marker = amPmMarker(hour)
	}

	switch format {
	case FormatHourOnly:
		return join(strconv.Itoa(display), "o'clock", marker)
	case FormatMinutesOnly:
		switch minute {
		case 0:
			return "zero minutes"
		case 1:
			return "one minute"
		default:
			return minuteWord(minute) + " minutes"
		}
	case FormatCustom:
		if phrase := renderCustom(display, minute, marker, custom); phrase != "" {
			return phrase
		}
		// An empty template (or one that substitutes to nothing) falls back
		// to the full phrase so the renderer stays non-empty.
		fallthrough
	default:
		if minute == 0 {
			return join(strconv.Itoa(display), "o'clock", marker)
		}
		return join(strconv.Itoa(display), minuteWord(minute), marker)
	}
}

// displayHour maps a 24-hour value onto the 12-hour dial.
func displayHour(hour int) int {
	switch {
	case hour == 0:
		return 12
	case hour > 12:
		return hour - 12
	default:
		return hour
	}
}

func amPmMarker(hour int) string {
	if hour < 12 {
		return "AM"
	}
	return "PM"
}

// minuteWord renders 0-9 with a spoken leading zero ("oh 5") and larger
// minutes as the bare number.
func minuteWord(minute int) string {
	if minute < 10 {
		return "oh " + strconv.Itoa(minute)
	}
	return strconv.Itoa(minute)
}

// renderCustom substitutes %H, %M, %A, then collapses interior whitespace
// and trims, so an empty %A never leaves a double or trailing space.
func renderCustom(display, minute int, marker, template string) string {
	phrase := strings.ReplaceAll(template, "%H", strconv.Itoa(display))
	phrase = strings.ReplaceAll(phrase, "%M", minuteWord(minute))
	phrase = strings.ReplaceAll(phrase, "%A", marker)
	return strings.Join(strings.Fields(phrase), " ")
}

// join concatenates non-empty words with single spaces.
func join(words ...string) string {
	out := words[:0]
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}
