package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/chime/internal/clock"
	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/recurrence"
	"github.com/dukerupert/chime/internal/reminder"
	"github.com/dukerupert/chime/internal/store"
	"github.com/dukerupert/chime/internal/websocket"
)

type ReminderSetHandler struct {
	setStore      *store.ReminderSetStore
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	rescheduler   Rescheduler
	logger        *slog.Logger
}

func NewReminderSetHandler(rs *store.ReminderSetStore, ss *store.SettingsStore, hub *websocket.Hub, resched Rescheduler, logger *slog.Logger) *ReminderSetHandler {
	return &ReminderSetHandler{setStore: rs, settingsStore: ss, hub: hub, rescheduler: resched, logger: logger}
}

func (h *ReminderSetHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ReminderSetHandler) reschedule() {
	if h.rescheduler != nil {
		h.rescheduler.Reschedule()
	}
}

type reminderSetRequest struct {
	Label        string `json:"label"`
	Hours        []int  `json:"hours"`
	ShowHalfHour bool   `json:"show_half_hour"`
	Interval     int    `json:"interval"`
	Days         []int  `json:"days"`
	FilterActive bool   `json:"filter_active"`
	Beep         bool   `json:"beep"`
	Speech       bool   `json:"speech"`
	Ringtone     bool   `json:"ringtone"`
}

func (r *reminderSetRequest) validate() (clock.WeekdaySet, string) {
	if len(r.Hours) == 0 {
		return 0, "at least one hour is required"
	}
	for _, h := range r.Hours {
		if h < 0 || h > 23 {
			return 0, "hours must be between 0 and 23"
		}
	}
	if !model.ValidInterval(r.Interval) {
		return 0, "interval must be 15, 30, or 60 minutes"
	}
	days, ok := daySet(r.Days)
	if !ok {
		return 0, "days must be weekday ordinals 1-7"
	}
	if r.FilterActive && days.IsEmpty() {
		return 0, "an active day filter needs at least one day"
	}
	return days, ""
}

func (h *ReminderSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reminderSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	days, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	set, err := h.setStore.Create(req.Label, req.Hours, req.ShowHalfHour, req.Interval, days, req.FilterActive, req.Beep, req.Speech, req.Ringtone)
	if err != nil {
		h.logger.Error("create reminder set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reminder set")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("reminder_set", "created", set.ID, nil))

	writeJSON(w, http.StatusCreated, set)
}

func (h *ReminderSetHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := h.setStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reminder sets")
		return
	}
	if sets == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *ReminderSetHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.setStore.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reminder set")
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "reminder set not found")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *ReminderSetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.setStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reminder set")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reminder set not found")
		return
	}

	var req reminderSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	days, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	existing.Label = req.Label
	existing.Hours = req.Hours
	existing.ShowHalfHour = req.ShowHalfHour
	existing.Interval = req.Interval
	existing.Days = days
	existing.FilterActive = req.FilterActive
	existing.Beep = req.Beep
	existing.Speech = req.Speech
	existing.Ringtone = req.Ringtone
	if err := h.setStore.Update(*existing); err != nil {
		h.logger.Error("update reminder set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reminder set")
		return
	}

	updated, err := h.setStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reminder set")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("reminder_set", "updated", id, nil))

	writeJSON(w, http.StatusOK, updated)
}

func (h *ReminderSetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.setStore.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "reminder set not found")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("reminder_set", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReminderSetHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.setStore.SetEnabled(id, req.Enabled); err != nil {
		writeError(w, http.StatusNotFound, "reminder set not found")
		return
	}

	h.reschedule()
	h.broadcast(websocket.NewMessage("reminder_set", "toggled", id, map[string]any{"enabled": req.Enabled}))

	set, _ := h.setStore.GetByID(id)
	writeJSON(w, http.StatusOK, set)
}

type upcomingReminder struct {
	ID     string          `json:"id"`
	Time   clock.TimeOfDay `json:"time"`
	FireAt time.Time       `json:"fire_at"`
}

// Upcoming previews the next firing of every occurrence the set expands to.
func (h *ReminderSetHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	set, err := h.setStore.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reminder set")
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "reminder set not found")
		return
	}

	loc := time.UTC
	if h.settingsStore != nil {
		if name, err := h.settingsStore.Get("timezone"); err == nil {
			if parsed, err := time.LoadLocation(name); err == nil {
				loc = parsed
			}
		}
	}

	now := time.Now()
	seen := make(map[string]struct{})
	upcoming := make([]upcomingReminder, 0)
	for _, rem := range reminder.Expand(*set) {
		if _, dup := seen[rem.ID]; dup {
			continue
		}
		seen[rem.ID] = struct{}{}

		fireAt, ok := recurrence.NextOccurrence(rem.Time, rem.Filter(), now, loc)
		if !ok {
			continue
		}
		upcoming = append(upcoming, upcomingReminder{ID: rem.ID, Time: rem.Time, FireAt: fireAt})
	}

	writeJSON(w, http.StatusOK, upcoming)
}
