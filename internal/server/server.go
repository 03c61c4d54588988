package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chime/internal/backup"
	"github.com/dukerupert/chime/internal/config"
	"github.com/dukerupert/chime/internal/handler"
	"github.com/dukerupert/chime/internal/middleware"
	"github.com/dukerupert/chime/internal/notify"
	"github.com/dukerupert/chime/internal/scheduler"
	"github.com/dukerupert/chime/internal/store"
	ws "github.com/dukerupert/chime/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	alarmH        *handler.AlarmHandler
	reminderSetH  *handler.ReminderSetHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	speakH        *handler.SpeakHandler
	backupH       *handler.BackupHandler
	dispatcher    *scheduler.Dispatcher
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

// hubOutput speaks by broadcasting the phrase to connected clients,
// which play it through their own speakers.
type hubOutput struct {
	hub *ws.Hub
}

func (o hubOutput) Speak(text string) {
	o.hub.Broadcast(ws.NewMessage("clock", "spoken", "", map[string]any{"phrase": text}))
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	alarmStore := store.NewAlarmStore(db)
	reminderSetStore := store.NewReminderSetStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	var sender *notify.Sender
	if cfg.PushEnabled() {
		sender = notify.NewSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	}

	registry := notify.NewRegistry()
	coordinator := scheduler.NewCoordinator(registry, logger.With("component", "scheduler"))

	onFire := func(s notify.Schedule) {
		hub.Broadcast(ws.FireMessage(s.ID, s.Payload.Title, s.Payload.Beep))
	}

	dispatcher := scheduler.NewDispatcher(registry, coordinator, sender, hubOutput{hub: hub},
		alarmStore, reminderSetStore, settingsStore, pushStore,
		onFire, logger.With("component", "dispatcher"))

	backupLogger := logger.With("component", "backup")
	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		DBPath:     cfg.DBPath,
		Passphrase: cfg.BackupPassphrase,
	}
	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, backupLogger)

	return &Server{
		db:            db,
		hub:           hub,
		alarmH:        handler.NewAlarmHandler(alarmStore, settingsStore, hub, dispatcher, logger.With("component", "alarm")),
		reminderSetH:  handler.NewReminderSetHandler(reminderSetStore, settingsStore, hub, dispatcher, logger.With("component", "reminder")),
		settingsH:     handler.NewSettingsHandler(settingsStore, hub, dispatcher),
		pushH:         handler.NewPushHandler(pushStore, sender, logger.With("component", "push")),
		speakH:        handler.NewSpeakHandler(settingsStore, hubOutput{hub: hub}),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, backupLogger),
		dispatcher:    dispatcher,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Dispatcher returns the schedule dispatcher for lifecycle management.
func (s *Server) Dispatcher() *scheduler.Dispatcher {
	return s.dispatcher
}

// BackupManager returns the backup manager for lifecycle management.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Alarm API routes
	mux.HandleFunc("POST /api/alarms", s.alarmH.Create)
	mux.HandleFunc("GET /api/alarms", s.alarmH.List)
	mux.HandleFunc("GET /api/alarms/{id}", s.alarmH.Get)
	mux.HandleFunc("PUT /api/alarms/{id}", s.alarmH.Update)
	mux.HandleFunc("DELETE /api/alarms/{id}", s.alarmH.Delete)
	mux.HandleFunc("PUT /api/alarms/{id}/enabled", s.alarmH.SetEnabled)
	mux.HandleFunc("POST /api/alarms/{id}/snooze", s.alarmH.Snooze)
	mux.HandleFunc("POST /api/alarms/{id}/dismiss", s.alarmH.Dismiss)
	mux.HandleFunc("GET /api/alarms/{id}/next", s.alarmH.Next)

	// Reminder set API routes
	mux.HandleFunc("POST /api/reminder-sets", s.reminderSetH.Create)
	mux.HandleFunc("GET /api/reminder-sets", s.reminderSetH.List)
	mux.HandleFunc("GET /api/reminder-sets/{id}", s.reminderSetH.Get)
	mux.HandleFunc("PUT /api/reminder-sets/{id}", s.reminderSetH.Update)
	mux.HandleFunc("DELETE /api/reminder-sets/{id}", s.reminderSetH.Delete)
	mux.HandleFunc("PUT /api/reminder-sets/{id}/enabled", s.reminderSetH.SetEnabled)
	mux.HandleFunc("GET /api/reminder-sets/{id}/upcoming", s.reminderSetH.Upcoming)

	// Settings API routes
	mux.HandleFunc("GET /api/settings/speech", s.settingsH.GetSpeech)
	mux.HandleFunc("PUT /api/settings/speech", s.settingsH.UpdateSpeech)
	mux.HandleFunc("GET /api/settings/clock", s.settingsH.GetClock)
	mux.HandleFunc("PUT /api/settings/clock", s.settingsH.UpdateClock)

	// Speak on demand, rate limited so a stuck client cannot flood TTS.
	mux.HandleFunc("GET /api/speak", s.rateLimitedHandler(s.speakH.Speak, 30))

	// Push notification API routes
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// Backup API routes
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backup/history", s.backupH.History)
	mux.HandleFunc("POST /api/backup/now", s.rateLimitedHandler(s.backupH.RunNow, 3))
	mux.HandleFunc("POST /api/backup/{id}/restore", s.backupH.Restore)
	mux.HandleFunc("GET /api/backup/{id}/download", s.backupH.Download)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc, limit int) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, limit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
