package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/dukerupert/chime/internal/store"
	"github.com/dukerupert/chime/internal/websocket"
)

var timeFormatRegexp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	rescheduler   Rescheduler
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, rs Rescheduler) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, hub: hub, rescheduler: rs}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) GetSpeech(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetSpeechSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateSpeech(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validateSpeechSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	h.broadcast(websocket.NewMessage("settings", "updated", "", nil))

	settings, err := h.settingsStore.GetSpeechSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) GetClock(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetClockSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateClock(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validateClockSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	// Timezone and quiet-hours changes move pending fire times.
	if h.rescheduler != nil {
		h.rescheduler.Reschedule()
	}
	h.broadcast(websocket.NewMessage("settings", "updated", "", nil))

	settings, err := h.settingsStore.GetClockSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

var validSpeechFormats = map[string]bool{
	"full":         true,
	"hour_only":    true,
	"minutes_only": true,
	"custom":       true,
}

func validateSpeechSettings(settings map[string]string) error {
	allowedKeys := map[string]bool{
		"speech_format":   true,
		"speak_ampm":      true,
		"custom_template": true,
	}

	for key, value := range settings {
		if !allowedKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}

		switch key {
		case "speech_format":
			if !validSpeechFormats[value] {
				return fmt.Errorf("speech_format must be full, hour_only, minutes_only, or custom")
			}
		case "speak_ampm":
			if value != "true" && value != "false" {
				return fmt.Errorf("speak_ampm must be \"true\" or \"false\"")
			}
		}
	}
	return nil
}

func validateClockSettings(settings map[string]string) error {
	allowedKeys := map[string]bool{
		"timezone":            true,
		"snooze_minutes":      true,
		"quiet_hours_enabled": true,
		"quiet_hours_start":   true,
		"quiet_hours_end":     true,
	}

	for key, value := range settings {
		if !allowedKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}

		switch key {
		case "timezone":
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("unknown timezone: %s", value)
			}
		case "snooze_minutes":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 120 {
				return fmt.Errorf("snooze_minutes must be 1-120")
			}
		case "quiet_hours_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("quiet_hours_enabled must be \"true\" or \"false\"")
			}
		case "quiet_hours_start", "quiet_hours_end":
			if !timeFormatRegexp.MatchString(value) {
				return fmt.Errorf("%s must be HH:MM format", key)
			}
		}
	}
	return nil
}
