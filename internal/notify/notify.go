// Package notify defines the delivery port the scheduling engine submits to
// and the in-process registry that stands in for a platform notification
// service.
package notify

import (
	"sort"
	"sync"
	"time"
)

// Payload is what a schedule carries to the user when it fires.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
	Beep  bool   `json:"beep,omitempty"`
	Speak bool   `json:"speak,omitempty"`
}

// Schedule is one pending delivery: fire Payload at or after FireAt.
type Schedule struct {
	ID      string
	FireAt  time.Time
	Payload Payload
}

// Delivery is the consumed notification service. Submit with an existing id
// replaces the earlier schedule, which is what makes full rebuilds cheap.
type Delivery interface {
	Submit(id string, fireAt time.Time, payload Payload) error
	Cancel(id string) error
	CancelAll() error
}

// Registry is an in-memory Delivery. The dispatch loop drains it; tests
// inspect it. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	pending map[string]Schedule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]Schedule)}
}

// Submit stores or replaces the schedule keyed by id.
func (r *Registry) Submit(id string, fireAt time.Time, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[id] = Schedule{ID: id, FireAt: fireAt, Payload: payload}
	return nil
}

// Cancel removes the schedule with the given id, if present.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	return nil
}

// CancelAll drops every pending schedule.
func (r *Registry) CancelAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[string]Schedule)
	return nil
}

// Due removes and returns every schedule with FireAt at or before now,
// ordered by fire time.
func (r *Registry) Due(now time.Time) []Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []Schedule
	for id, s := range r.pending {
		if !s.FireAt.After(now) {
			due = append(due, s)
			delete(r.pending, id)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	return due
}

// Pending returns a snapshot of every pending schedule, ordered by fire time
// then id for determinism.
func (r *Registry) Pending() []Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Schedule, 0, len(r.pending))
	for _, s := range r.pending {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
