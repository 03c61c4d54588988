package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/chime/internal/clock"
)

// Rescheduler rebuilds the pending schedule set after a mutation.
type Rescheduler interface {
	Reschedule()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// daySet converts weekday ordinals (Sunday=1 .. Saturday=7) into a set.
func daySet(ordinals []int) (clock.WeekdaySet, bool) {
	days := make([]clock.Weekday, 0, len(ordinals))
	for _, n := range ordinals {
		d := clock.Weekday(n)
		if !d.Valid() {
			return 0, false
		}
		days = append(days, d)
	}
	return clock.NewWeekdaySet(days...), true
}
