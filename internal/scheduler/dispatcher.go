package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/chime/internal/notify"
	"github.com/dukerupert/chime/internal/speech"
	"github.com/dukerupert/chime/internal/store"
)

// FireCallback is invoked for every schedule the dispatcher fires, after
// delivery. The server uses it to broadcast fire events to connected
// clients. The spoken phrase is not part of the event: announcements go
// out once, through the speech output.
type FireCallback func(s notify.Schedule)

// Dispatcher drives the pending-schedule registry: every tick it fires due
// schedules (speaking the phrase, pushing to subscribers) and then rebuilds
// the schedule set so recurring entities re-arm.
type Dispatcher struct {
	mu          sync.RWMutex
	registry    *notify.Registry
	coordinator *Coordinator
	sender      *notify.Sender // nil when VAPID keys are not configured
	output      speech.Output
	alarms      *store.AlarmStore
	sets        *store.ReminderSetStore
	settings    *store.SettingsStore
	push        *store.PushStore
	onFire      FireCallback
	interval    time.Duration
	logger      *slog.Logger
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewDispatcher creates a dispatcher. sender and onFire may be nil.
func NewDispatcher(registry *notify.Registry, coordinator *Coordinator, sender *notify.Sender, output speech.Output,
	alarms *store.AlarmStore, sets *store.ReminderSetStore, settings *store.SettingsStore, push *store.PushStore,
	onFire FireCallback, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry:    registry,
		coordinator: coordinator,
		sender:      sender,
		output:      output,
		alarms:      alarms,
		sets:        sets,
		settings:    settings,
		push:        push,
		onFire:      onFire,
		interval:    30 * time.Second,
		logger:      logger,
	}
}

// Start builds the initial schedule and begins the tick loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.mu.Unlock()

	d.Reschedule()

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the dispatcher.
func (d *Dispatcher) Stop() {
	d.mu.RLock()
	cancel := d.cancel
	done := d.done
	d.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Reschedule rebuilds the full schedule set from the stored entities.
// Handlers call this after every mutation; the tick loop calls it after
// firing so recurring entities pick up their next occurrence.
func (d *Dispatcher) Reschedule() {
	alarms, err := d.alarms.List()
	if err != nil {
		d.logger.Error("reschedule: list alarms", "error", err)
		return
	}
	sets, err := d.sets.List()
	if err != nil {
		d.logger.Error("reschedule: list reminder sets", "error", err)
		return
	}

	loc := d.location()
	if _, err := d.coordinator.RescheduleAll(alarms, sets, time.Now(), loc); err != nil {
		// Per-entity submit failures; the rest of the rebuild went through.
		d.logger.Warn("reschedule: partial rebuild", "error", err)
	}
}

func (d *Dispatcher) tick(ctx context.Context) {
	now := time.Now()
	due := d.registry.Due(now)
	if len(due) == 0 {
		return
	}

	for _, s := range due {
		d.fire(ctx, s, now)
	}

	d.Reschedule()
}

func (d *Dispatcher) fire(ctx context.Context, s notify.Schedule, now time.Time) {
	loc := d.location()
	local := s.FireAt.In(loc)
	quiet := d.inQuietHours(local)

	d.logger.Info("schedule fired", "id", s.ID, "fire_at", s.FireAt, "quiet", quiet)

	if s.Payload.Speak && !quiet && d.output != nil {
		d.output.Speak(d.phrase(local))
	}

	if d.sender != nil {
		d.pushOut(ctx, s)
	}

	if d.onFire != nil {
		d.onFire(s)
	}
}

// phrase renders the announcement for the fire time under current settings.
func (d *Dispatcher) phrase(local time.Time) string {
	settings, err := d.settings.GetSpeechSettings()
	if err != nil {
		d.logger.Error("speech settings", "error", err)
		settings = map[string]string{}
	}

	format := speech.ParseFormat(settings["speech_format"])
	speakAmPm := settings["speak_ampm"] != "false"
	return speech.Render(local.Hour(), local.Minute(), format, speakAmPm, settings["custom_template"])
}

func (d *Dispatcher) pushOut(ctx context.Context, s notify.Schedule) {
	subs, err := d.push.List()
	if err != nil {
		d.logger.Error("list push subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := d.sender.SendWithRetry(ctx, &sub, s.Payload); err != nil {
			if errors.Is(err, notify.ErrExpired) {
				if err := d.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					d.logger.Error("prune expired subscription", "endpoint", sub.Endpoint, "error", err)
				}
				continue
			}
			d.logger.Error("send push", "id", s.ID, "error", err)
		}
	}
}

// location resolves the configured timezone, defaulting to UTC.
func (d *Dispatcher) location() *time.Location {
	name, err := d.settings.Get("timezone")
	if err != nil || name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		d.logger.Warn("invalid timezone setting", "timezone", name)
		return time.UTC
	}
	return loc
}

// inQuietHours reports whether t falls inside the configured quiet window.
// The window may wrap past midnight (22:00-06:00).
func (d *Dispatcher) inQuietHours(t time.Time) bool {
	settings, err := d.settings.GetClockSettings()
	if err != nil || settings["quiet_hours_enabled"] != "true" {
		return false
	}

	start, okStart := parseClock(settings["quiet_hours_start"])
	end, okEnd := parseClock(settings["quiet_hours_end"])
	if !okStart || !okEnd || start == end {
		return false
	}

	minutes := t.Hour()*60 + t.Minute()
	if start < end {
		return minutes >= start && minutes < end
	}
	// wrap: [start..24h) U [0..end)
	return minutes >= start || minutes < end
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
