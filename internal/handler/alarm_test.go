package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/database"
	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/store"
)

type countingRescheduler struct {
	calls int
}

func (c *countingRescheduler) Reschedule() { c.calls++ }

func setupAlarmHandler(t *testing.T) (*http.ServeMux, *store.AlarmStore, *countingRescheduler) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	alarms := store.NewAlarmStore(db)
	settings := store.NewSettingsStore(db)
	resched := &countingRescheduler{}
	h := NewAlarmHandler(alarms, settings, nil, resched, slog.Default())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/alarms", h.Create)
	mux.HandleFunc("GET /api/alarms", h.List)
	mux.HandleFunc("GET /api/alarms/{id}", h.Get)
	mux.HandleFunc("PUT /api/alarms/{id}", h.Update)
	mux.HandleFunc("DELETE /api/alarms/{id}", h.Delete)
	mux.HandleFunc("POST /api/alarms/{id}/snooze", h.Snooze)
	mux.HandleFunc("POST /api/alarms/{id}/dismiss", h.Dismiss)
	return mux, alarms, resched
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAlarmHandlerCreate(t *testing.T) {
	mux, _, resched := setupAlarmHandler(t)

	rec := doJSON(t, mux, "POST", "/api/alarms",
		`{"label":"wake up","hour":7,"minute":30,"days":[2,3,4,5,6],"filter_active":true,"beep":true,"speech":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var got model.Alarm
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Label != "wake up" || got.Time.Hour != 7 || got.Time.Minute != 30 {
		t.Errorf("alarm = %+v", got)
	}
	if got.Days != clock.Weekdays {
		t.Errorf("days = %s, want weekdays", got.Days)
	}
	if resched.calls != 1 {
		t.Errorf("reschedule calls = %d, want 1", resched.calls)
	}
}

func TestAlarmHandlerCreateValidation(t *testing.T) {
	mux, _, resched := setupAlarmHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"hour out of range", `{"hour":24,"minute":0,"days":[]}`},
		{"minute out of range", `{"hour":7,"minute":60,"days":[]}`},
		{"bad day ordinal", `{"hour":7,"minute":0,"days":[0]}`},
		{"active filter with no days", `{"hour":7,"minute":0,"days":[],"filter_active":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, "POST", "/api/alarms", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if resched.calls != 0 {
		t.Errorf("rejected requests should not reschedule, got %d calls", resched.calls)
	}
}

func TestAlarmHandlerSnoozeAndDismiss(t *testing.T) {
	mux, alarms, _ := setupAlarmHandler(t)

	a, err := alarms.Create("nap", clock.TimeOfDay{Hour: 14, Minute: 0}, clock.Everyday, false, true, false, false)
	if err != nil {
		t.Fatalf("create alarm: %v", err)
	}

	before := time.Now()
	rec := doJSON(t, mux, "POST", "/api/alarms/"+a.ID+"/snooze", `{"minutes":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("snooze status = %d: %s", rec.Code, rec.Body)
	}

	stored, _ := alarms.GetByID(a.ID)
	if stored.SnoozedUntil == nil {
		t.Fatal("snooze not persisted")
	}
	until := *stored.SnoozedUntil
	if until.Before(before.Add(4*time.Minute)) || until.After(before.Add(6*time.Minute)) {
		t.Errorf("snoozed_until = %v, want about 5 minutes from now", until)
	}

	rec = doJSON(t, mux, "POST", "/api/alarms/"+a.ID+"/dismiss", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d: %s", rec.Code, rec.Body)
	}
	stored, _ = alarms.GetByID(a.ID)
	if stored.SnoozedUntil != nil {
		t.Error("dismiss should clear snooze")
	}

	// Dismissing an idle alarm is still a 200.
	rec = doJSON(t, mux, "POST", "/api/alarms/"+a.ID+"/dismiss", "")
	if rec.Code != http.StatusOK {
		t.Errorf("idle dismiss status = %d, want 200", rec.Code)
	}
}

func TestAlarmHandlerSnoozeDefaultFromSettings(t *testing.T) {
	mux, alarms, _ := setupAlarmHandler(t)

	a, err := alarms.Create("nap", clock.TimeOfDay{Hour: 14, Minute: 0}, clock.Everyday, false, true, false, false)
	if err != nil {
		t.Fatalf("create alarm: %v", err)
	}

	// No minutes in the body falls back to the seeded snooze_minutes (10).
	before := time.Now()
	rec := doJSON(t, mux, "POST", "/api/alarms/"+a.ID+"/snooze", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("snooze status = %d: %s", rec.Code, rec.Body)
	}

	stored, _ := alarms.GetByID(a.ID)
	if stored.SnoozedUntil == nil {
		t.Fatal("snooze not persisted")
	}
	until := *stored.SnoozedUntil
	if until.Before(before.Add(9*time.Minute)) || until.After(before.Add(11*time.Minute)) {
		t.Errorf("snoozed_until = %v, want about 10 minutes from now", until)
	}
}

func TestAlarmHandlerNotFound(t *testing.T) {
	mux, _, _ := setupAlarmHandler(t)

	rec := doJSON(t, mux, "GET", "/api/alarms/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, mux, "POST", "/api/alarms/missing/snooze", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("snooze status = %d, want 404", rec.Code)
	}
}
