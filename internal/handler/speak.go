package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/chime/internal/speech"
	"github.com/dukerupert/chime/internal/store"
)

type SpeakHandler struct {
	settingsStore *store.SettingsStore
	output        speech.Output
}

func NewSpeakHandler(ss *store.SettingsStore, output speech.Output) *SpeakHandler {
	return &SpeakHandler{settingsStore: ss, output: output}
}

// Speak handles GET /api/speak. It announces the current time, or the
// time given as ?at=HH:MM, using the configured speech settings. The
// announcement goes out once, through the speech output.
func (h *SpeakHandler) Speak(w http.ResponseWriter, r *http.Request) {
	hour, minute := h.now()

	if at := r.URL.Query().Get("at"); at != "" {
		if !timeFormatRegexp.MatchString(at) {
			writeError(w, http.StatusBadRequest, "at must be HH:MM format")
			return
		}
		hour = int(at[0]-'0')*10 + int(at[1]-'0')
		minute = int(at[3]-'0')*10 + int(at[4]-'0')
	}

	settings, err := h.settingsStore.GetSpeechSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	format := speech.ParseFormat(settings["speech_format"])
	speakAmPm := settings["speak_ampm"] != "false"
	phrase := speech.Render(hour, minute, format, speakAmPm, settings["custom_template"])

	if h.output != nil {
		h.output.Speak(phrase)
	}

	writeJSON(w, http.StatusOK, map[string]string{"phrase": phrase})
}

func (h *SpeakHandler) now() (int, int) {
	loc := time.UTC
	if name, err := h.settingsStore.Get("timezone"); err == nil {
		if parsed, err := time.LoadLocation(name); err == nil {
			loc = parsed
		}
	}
	now := time.Now().In(loc)
	return now.Hour(), now.Minute()
}
