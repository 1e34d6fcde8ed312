// Package events provides a bounded, in-memory, process-local feed of
// autopilot activity (scheduled, posted, skipped, tick outcomes). It is
// advisory/observability-only: entries are lost on restart, appends never
// block or fail the caller, and nothing in the consistency-critical path
// depends on it.
package events

import (
	"sync"
	"time"
)

// Event types emitted by the autopilot engine.
const (
	TypeScheduled = "scheduled"
	TypePosted    = "posted"
	TypeSkipped   = "skipped"
	TypeTick      = "tick"
	TypeError     = "error"
)

// Event is one feed entry. Metadata is small and JSON-serializable
// (candidate ids, reasons, counts).
type Event struct {
	Type     string         `json:"type"`
	Platform string         `json:"platform,omitempty"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
	At       time.Time      `json:"at"`
}

// DefaultCapacity bounds the feed when no explicit capacity is given.
const DefaultCapacity = 400

// Ring is a fixed-capacity circular buffer of events. Once full, each
// append evicts the oldest entry. Safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	head  int // next write position
	count int
}

// NewRing returns a ring holding at most capacity entries
// (DefaultCapacity when capacity <= 0).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]Event, capacity)}
}

// Append records an event, stamping At if unset. It never blocks.
func (r *Ring) Append(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Recent returns up to limit events, newest first. limit <= 0 or beyond the
// stored count returns everything retained.
func (r *Ring) Recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.head - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// Len returns the number of retained events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
