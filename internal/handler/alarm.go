package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/chime/internal/alarm"
	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/store"
	"github.com/dukerupert/chime/internal/websocket"
)

type AlarmHandler struct {
	alarmStore    *store.AlarmStore
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	rescheduler   Rescheduler
	logger        *slog.Logger
}

func NewAlarmHandler(as *store.AlarmStore, ss *store.SettingsStore, hub *websocket.Hub, rs Rescheduler, logger *slog.Logger) *AlarmHandler {
	return &AlarmHandler{alarmStore: as, settingsStore: ss, hub: hub, rescheduler: rs, logger: logger}
}

func (h *AlarmHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AlarmHandler) reschedule() {
	if h.rescheduler != nil {
		h.rescheduler.Reschedule()
	}
}

type alarmRequest struct {
	Label        string `json:"label"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Days         []int  `json:"days"`
	FilterActive bool   `json:"filter_active"`
	Beep         bool   `json:"beep"`
	Speech       bool   `json:"speech"`
	Ringtone     bool   `json:"ringtone"`
}

func (r *alarmRequest) validate() (clock.TimeOfDay, clock.WeekdaySet, string) {
	at, err := clock.NewTimeOfDay(r.Hour, r.Minute)
	if err != nil {
		return clock.TimeOfDay{}, 0, "time must be between 00:00 and 23:59"
	}
	days, ok := daySet(r.Days)
	if !ok {
		return clock.TimeOfDay{}, 0, "days must be weekday ordinals 1-7"
	}
	if r.FilterActive && days.IsEmpty() {
		return clock.TimeOfDay{}, 0, "an active day filter needs at least one day"
	}
	return at, days, ""
}

func (h *AlarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	at, days, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	a, err := h.alarmStore.Create(req.Label, at, days, req.FilterActive, req.Beep, req.Speech, req.Ringtone)
	if err != nil {
		h.logger.Error("create alarm", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create alarm")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "created", a.ID, nil))

	writeJSON(w, http.StatusCreated, a)
}

func (h *AlarmHandler) List(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.alarmStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list alarms")
		return
	}
	if alarms == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (h *AlarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.alarmStore.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AlarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.alarmStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	at, days, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	existing.Label = req.Label
	existing.Time = at
	existing.Days = days
	existing.FilterActive = req.FilterActive
	existing.Beep = req.Beep
	existing.Speech = req.Speech
	existing.Ringtone = req.Ringtone
	if err := h.alarmStore.Update(*existing); err != nil {
		h.logger.Error("update alarm", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update alarm")
		return
	}

	updated, err := h.alarmStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "updated", id, nil))

	writeJSON(w, http.StatusOK, updated)
}

func (h *AlarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.alarmStore.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *AlarmHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.alarmStore.SetEnabled(id, req.Enabled); err != nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "toggled", id, map[string]any{"enabled": req.Enabled}))

	a, _ := h.alarmStore.GetByID(id)
	writeJSON(w, http.StatusOK, a)
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

// Snooze pushes the alarm's next firing out by the requested number of
// minutes, falling back to the configured default.
func (h *AlarmHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, err := h.alarmStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	var req snoozeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	d := time.Duration(req.Minutes) * time.Minute
	if req.Minutes <= 0 {
		d = h.defaultSnooze()
	}

	now := time.Now()
	alarm.Snooze(a, d, now)
	if err := h.alarmStore.SetSnoozedUntil(id, a.SnoozedUntil); err != nil {
		h.logger.Error("snooze alarm", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to snooze alarm")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "snoozed", id, map[string]any{
		"snoozed_until": a.SnoozedUntil,
	}))

	writeJSON(w, http.StatusOK, a)
}

// Dismiss clears any snooze state. Dismissing an idle alarm is a no-op.
func (h *AlarmHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, err := h.alarmStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	alarm.Dismiss(a)
	if err := h.alarmStore.SetSnoozedUntil(id, nil); err != nil {
		h.logger.Error("dismiss alarm", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dismiss alarm")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("alarm", "dismissed", id, nil))

	writeJSON(w, http.StatusOK, a)
}

// Next reports when the alarm will fire, honoring snooze overrides.
func (h *AlarmHandler) Next(w http.ResponseWriter, r *http.Request) {
	a, err := h.alarmStore.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get alarm")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}

	next, ok := alarm.NextOccurrence(*a, time.Now(), h.location())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"scheduled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduled": true, "fire_at": next})
}

func (h *AlarmHandler) defaultSnooze() time.Duration {
	if h.settingsStore == nil {
		return alarm.DefaultSnooze
	}
	value, err := h.settingsStore.Get("snooze_minutes")
	if err != nil {
		return alarm.DefaultSnooze
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return alarm.DefaultSnooze
	}
	return time.Duration(minutes) * time.Minute
}

func (h *AlarmHandler) location() *time.Location {
	if h.settingsStore == nil {
		return time.UTC
	}
	name, err := h.settingsStore.Get("timezone")
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
