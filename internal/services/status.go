// Package services – scheduler status record.
//
// The status record is the explicit, single-owner home for mutable
// scheduler-wide state (last tick time, lock-held flag). Only the tick
// orchestrator writes it; monitoring reads copies.
package services

import (
	"sync"
	"time"
)

// statusRecord guards the SchedulerStatus snapshot.
type statusRecord struct {
	mu sync.Mutex
	s  SchedulerStatus
}

// finish records a completed tick body (lock acquired, ran to completion
// or failure).
func (r *statusRecord) finish(start, end time.Time, lockHeld bool, errMsg string) {
	r.mu.Lock()
	r.s.LastTickAt = start
	r.s.LastDuration = end.Sub(start)
	r.s.LockHeld = lockHeld
	r.s.LastError = errMsg
	r.s.TicksRun++
	r.mu.Unlock()
}

// skipped records a tick that found the global lock held elsewhere and
// performed no state mutations.
func (r *statusRecord) skipped(start time.Time) {
	r.mu.Lock()
	r.s.LastTickAt = start
	r.s.LockHeld = false
	r.s.TicksSkipped++
	r.mu.Unlock()
}

// snapshot returns a copy safe to expose to callers.
func (r *statusRecord) snapshot() SchedulerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s
}
