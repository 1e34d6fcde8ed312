// Package services – AutopilotService
//
// This file implements the autopilot scheduling engine: the candidate
// refill pass, the pacing/due-posting pass, and the tick orchestration that
// runs both under the global scheduler lock. It is the only component that
// drives candidate state-machine transitions.
//
// Concurrency model: multiple process instances may tick concurrently; the
// "scheduler" TTL lock ensures only one tick body runs system-wide, and the
// per-candidate "post:<id>" claim is the actual correctness boundary for
// "post at most once": even two overlapping tick bodies cannot both claim
// the same candidate.
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/dedup"
	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/events"
	"github.com/reelpilot/go-autopilot-backend/internal/repo"
)

// Engine policy constants. Pacing caps live in settings; these bound the
// work a single tick may do and the lock lifetimes around it.
const (
	// SchedulerLockKey is the global tick-exclusion lock key.
	SchedulerLockKey = "scheduler"
	// SchedulerLockTTL is shorter than the tick interval so a crashed tick
	// cannot starve future ticks for more than one period.
	SchedulerLockTTL = 55 * time.Second
	// ClaimLockTTL bounds a per-candidate posting claim.
	ClaimLockTTL = 120 * time.Second

	// refillScanLimit caps how many queued candidates one refill examines.
	refillScanLimit = 100
	// dueBatchLimit caps how many due items one pacing pass processes,
	// keeping tick duration inside the lock TTL budget.
	dueBatchLimit = 50

	// staggerBase/staggerStep spread successive promotions inside one
	// refill so posts never collide at the same instant.
	staggerBase = 30 * time.Second
	staggerStep = 60 * time.Second
)

// claimKey returns the per-candidate posting claim lock key.
func claimKey(candidateID string) string { return "post:" + candidateID }

// RefillResult reports one refill pass.
type RefillResult struct {
	Added   int   `json:"added"`
	Backlog int64 `json:"backlog"`
}

// PostResult reports one pacing/due-posting pass.
type PostResult struct {
	Posted  int `json:"posted"`
	Skipped int `json:"skipped"`
}

// TickResult reports one tick. Ran is false when the global lock was held
// elsewhere, in which case the tick performed zero state mutations.
type TickResult struct {
	Ran     bool   `json:"ran"`
	Added   int    `json:"added"`
	Posted  int    `json:"posted"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// SchedulerStatus is the health snapshot maintained by the tick
// orchestrator and exposed read-only to monitoring. It is the only mutable
// scheduler-wide state and has a single writer (RunTick).
type SchedulerStatus struct {
	LastTickAt   time.Time     `json:"last_tick_at"`
	LastDuration time.Duration `json:"last_duration_ns"`
	LockHeld     bool          `json:"lock_held"`
	LastError    string        `json:"last_error,omitempty"`
	TicksRun     uint64        `json:"ticks_run"`
	TicksSkipped uint64        `json:"ticks_skipped"`
}

// Publisher delivers a posted candidate to the external platform. Delivery
// is best-effort and happens after the posted transition has committed;
// exactly-once delivery against platform outages is out of scope.
type Publisher interface {
	Publish(ctx context.Context, c domain.Candidate) error
}

// AutopilotService implements refill, pacing, and tick orchestration.
type AutopilotService struct {
	// DB is the GORM handle used for all queue, lock, and log operations.
	DB *gorm.DB
	// Events receives best-effort audit entries; may be nil.
	Events *events.Ring
	// Publisher, when set, is invoked after each committed post.
	Publisher Publisher

	// Now allows tests to pin the clock; defaults to time.Now.
	Now func() time.Time

	status statusRecord
}

// NewAutopilotService constructs the engine.
func NewAutopilotService(db *gorm.DB, ring *events.Ring) *AutopilotService {
	return &AutopilotService{DB: db, Events: ring}
}

func (s *AutopilotService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// emit appends an audit event; it never blocks or fails the caller.
func (s *AutopilotService) emit(e events.Event) {
	if s.Events != nil {
		s.Events.Append(e)
	}
}

// Classify runs the duplicate classifier for a candidate against its
// platform's current recency window. Exposed for the diagnostic endpoint;
// refill and pacing run the same check internally.
func (s *AutopilotService) Classify(ctx context.Context, c domain.Candidate) (dedup.Verdict, error) {
	settings, err := repo.GetSettings(ctx, s.DB)
	if err != nil {
		return dedup.Verdict{}, err
	}
	window, err := repo.ListRecentPosted(ctx, s.DB, c.Platform, settings.RecencyWindow)
	if err != nil {
		return dedup.Verdict{}, err
	}
	return dedup.Classify(c, window), nil
}

// Refill tops the scheduled backlog up to targetBacklog (the settings
// default when <= 0). It examines up to refillScanLimit queued candidates
// in descending engagement order and, per candidate:
//
//   - leaves it queued when below the platform minimum engagement
//     (Instagram only; TikTok sources have no minimum);
//   - transitions it to skipped when the classifier finds a near duplicate
//     in the platform's recency window;
//   - otherwise schedules it at now + staggerBase + staggerStep·(promotions
//     so far in this pass), so successive posts never share an instant.
//
// Refill assumes it runs under the global scheduler lock (RunTick) or an
// operator-triggered equivalent; it performs no locking of its own.
func (s *AutopilotService) Refill(ctx context.Context, targetBacklog int) (RefillResult, error) {
	tr := otel.Tracer("services/AutopilotService")
	ctx, span := tr.Start(ctx, "Refill",
		trace.WithAttributes(attribute.Int("target_backlog", targetBacklog)),
	)
	defer span.End()

	settings, err := repo.GetSettings(ctx, s.DB)
	if err != nil {
		return RefillResult{}, err
	}
	if targetBacklog <= 0 {
		targetBacklog = settings.TargetBacklog
	}

	current, err := repo.CountScheduled(ctx, s.DB)
	if err != nil {
		return RefillResult{}, err
	}
	if current >= int64(targetBacklog) {
		return RefillResult{Added: 0, Backlog: current}, nil
	}
	want := targetBacklog - int(current)

	queued, err := repo.ListQueuedByEngagement(ctx, s.DB, refillScanLimit)
	if err != nil {
		return RefillResult{}, err
	}

	// One recency window fetch per platform per pass. Refill itself never
	// appends posted records, so the window stays valid for the whole pass.
	windows := map[string][]domain.PostedRecord{}
	now := s.now()
	added := 0

	for _, c := range queued {
		if added >= want {
			break
		}
		if c.Platform == domain.PlatformInstagram && c.EngagementScore < settings.MinEngagement {
			continue // stays queued, may qualify after a settings change
		}

		window, ok := windows[c.Platform]
		if !ok {
			window, err = repo.ListRecentPosted(ctx, s.DB, c.Platform, settings.RecencyWindow)
			if err != nil {
				return RefillResult{Added: added, Backlog: current + int64(added)}, err
			}
			windows[c.Platform] = window
		}

		if v := dedup.Classify(c, window); v.Duplicate {
			if err := repo.MarkSkipped(ctx, s.DB, c.ID); err != nil {
				return RefillResult{Added: added, Backlog: current + int64(added)}, err
			}
			skipsTotal.WithLabelValues(c.Platform, v.Reason).Inc()
			s.emit(events.Event{
				Type:     events.TypeSkipped,
				Platform: c.Platform,
				Message:  "refill: duplicate candidate skipped",
				Metadata: map[string]any{"candidate_id": c.ID, "reason": v.Reason, "matched_id": v.MatchedID},
			})
			continue
		}

		at := now.Add(staggerBase + time.Duration(added)*staggerStep)
		if err := repo.MarkScheduled(ctx, s.DB, c.ID, at); err != nil {
			return RefillResult{Added: added, Backlog: current + int64(added)}, err
		}
		added++
		s.emit(events.Event{
			Type:     events.TypeScheduled,
			Platform: c.Platform,
			Message:  "refill: candidate scheduled",
			Metadata: map[string]any{"candidate_id": c.ID, "scheduled_at": at, "engagement": c.EngagementScore},
		})
	}

	return RefillResult{Added: added, Backlog: current + int64(added)}, nil
}

// PostDue commits due scheduled candidates, subject to pacing.
//
// Per pass it determines the effective hourly cap (the burst override when
// the local wall clock is inside the configured window), computes each
// platform's trailing 60-minute and 24-hour posted counts (sliding windows,
// not calendar buckets), and walks up to dueBatchLimit due items in
// earliest-due order. Per item:
//
//   - at or over a cap → left scheduled, re-attempted next tick;
//   - claim lock unavailable → another tick owns it, skipped silently;
//   - duplicate at commit time → transitioned to skipped (the state may
//     have changed since refill; this second check closes that window);
//   - otherwise → posted: the status transition and the immutable
//     PostedRecord commit in one transaction, and the in-pass counts are
//     bumped so the caps hold within a single batch too.
func (s *AutopilotService) PostDue(ctx context.Context) (PostResult, error) {
	tr := otel.Tracer("services/AutopilotService")
	ctx, span := tr.Start(ctx, "PostDue")
	defer span.End()

	settings, err := repo.GetSettings(ctx, s.DB)
	if err != nil {
		return PostResult{}, err
	}
	now := s.now()

	hourlyCap := settings.HourlyLimit
	if burstActive(settings, now.Local()) {
		hourlyCap = settings.BurstPostsPerHour
	}

	hourCounts := map[string]int64{}
	dayCounts := map[string]int64{}
	for _, p := range []string{domain.PlatformInstagram, domain.PlatformTikTok} {
		if hourCounts[p], err = repo.CountPostedSince(ctx, s.DB, p, now.Add(-time.Hour)); err != nil {
			return PostResult{}, err
		}
		if dayCounts[p], err = repo.CountPostedSince(ctx, s.DB, p, now.Add(-24*time.Hour)); err != nil {
			return PostResult{}, err
		}
	}

	due, err := repo.ListDueScheduled(ctx, s.DB, now, dueBatchLimit)
	if err != nil {
		return PostResult{}, err
	}

	var res PostResult
	for _, c := range due {
		if hourCounts[c.Platform] >= int64(hourlyCap) || dayCounts[c.Platform] >= int64(settings.DailyLimit) {
			continue // capped: stays scheduled for a later tick
		}

		got, err := repo.TryAcquire(ctx, s.DB, claimKey(c.ID), ClaimLockTTL)
		if err != nil {
			return res, err
		}
		if !got {
			continue // claimed by a concurrent tick
		}

		window, err := repo.ListRecentPosted(ctx, s.DB, c.Platform, settings.RecencyWindow)
		if err != nil {
			return res, err
		}
		if v := dedup.Classify(c, window); v.Duplicate {
			if err := repo.MarkSkipped(ctx, s.DB, c.ID); err != nil {
				return res, err
			}
			res.Skipped++
			skipsTotal.WithLabelValues(c.Platform, v.Reason).Inc()
			s.emit(events.Event{
				Type:     events.TypeSkipped,
				Platform: c.Platform,
				Message:  "pacing: duplicate detected at commit time",
				Metadata: map[string]any{"candidate_id": c.ID, "reason": v.Reason, "matched_id": v.MatchedID},
			})
			continue
		}

		postedAt := s.now()
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repo.MarkPosted(ctx, tx, c.ID, postedAt); err != nil {
				return err
			}
			return repo.AppendPosted(ctx, tx, &domain.PostedRecord{
				ID:                uuid.NewString(),
				CandidateID:       c.ID,
				Platform:          c.Platform,
				PostedAt:          postedAt,
				VisualHash:        c.VisualHash,
				NormalizedCaption: c.NormalizedCaption,
				DurationSeconds:   c.DurationSeconds,
				AudioKey:          c.AudioKey,
			})
		})
		if err != nil {
			return res, err
		}

		hourCounts[c.Platform]++
		dayCounts[c.Platform]++
		res.Posted++
		postsTotal.WithLabelValues(c.Platform).Inc()
		s.emit(events.Event{
			Type:     events.TypePosted,
			Platform: c.Platform,
			Message:  "pacing: candidate posted",
			Metadata: map[string]any{"candidate_id": c.ID, "posted_at": postedAt},
		})

		if s.Publisher != nil {
			// Best-effort delivery; the posted transition stands regardless.
			if perr := s.Publisher.Publish(ctx, c); perr != nil {
				s.emit(events.Event{
					Type:     events.TypeError,
					Platform: c.Platform,
					Message:  "publish failed: " + perr.Error(),
					Metadata: map[string]any{"candidate_id": c.ID},
				})
			}
		}
	}

	return res, nil
}

// RunTick executes one scheduler tick: acquire the global lock (no-op when
// held elsewhere), then refill and pacing sequentially. Errors and panics
// are recorded (as events, on the status snapshot, and in the result) but
// never propagate; the next tick proceeds independently. Transitions
// already committed before a failure remain committed (no partial undo).
func (s *AutopilotService) RunTick(ctx context.Context) TickResult {
	tr := otel.Tracer("services/AutopilotService")
	ctx, span := tr.Start(ctx, "RunTick")
	defer span.End()

	start := s.now()
	var res TickResult

	got, err := repo.TryAcquire(ctx, s.DB, SchedulerLockKey, SchedulerLockTTL)
	if err != nil {
		res.Error = err.Error()
		ticksTotal.WithLabelValues("error").Inc()
		s.emit(events.Event{Type: events.TypeError, Message: "tick: lock acquisition failed: " + err.Error()})
		s.status.finish(start, s.now(), false, res.Error)
		return res
	}
	if !got {
		ticksTotal.WithLabelValues("contended").Inc()
		s.status.skipped(start)
		return res
	}

	res.Ran = true
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Error = fmt.Sprint(r)
			}
		}()

		refill, err := s.Refill(ctx, 0)
		res.Added = refill.Added
		if err != nil {
			res.Error = err.Error()
			return
		}

		post, err := s.PostDue(ctx)
		res.Posted = post.Posted
		res.Skipped = post.Skipped
		if err != nil {
			res.Error = err.Error()
		}
	}()

	end := s.now()
	if res.Error != "" {
		ticksTotal.WithLabelValues("error").Inc()
		s.emit(events.Event{
			Type:     events.TypeError,
			Message:  "tick failed: " + res.Error,
			Metadata: map[string]any{"added": res.Added, "posted": res.Posted},
		})
	} else {
		ticksTotal.WithLabelValues("ok").Inc()
		s.emit(events.Event{
			Type:    events.TypeTick,
			Message: "tick completed",
			Metadata: map[string]any{
				"added":   res.Added,
				"posted":  res.Posted,
				"skipped": res.Skipped,
				"took":    end.Sub(start).String(),
			},
		})
	}
	s.status.finish(start, end, true, res.Error)
	return res
}

// Status returns a copy of the scheduler health snapshot.
func (s *AutopilotService) Status() SchedulerStatus {
	return s.status.snapshot()
}

// burstActive reports whether the local wall-clock time falls inside the
// configured burst window [start, end), handling windows that wrap past
// midnight. Times are compared as minute-of-day integers parsed from the
// zero-padded HH:mm strings; malformed values disable the window rather
// than silently mis-comparing.
func burstActive(settings domain.Settings, local time.Time) bool {
	if !settings.BurstEnabled {
		return false
	}
	start, okS := minuteOfDay(settings.BurstStart)
	end, okE := minuteOfDay(settings.BurstEnd)
	if !okS || !okE || start == end {
		return false
	}
	cur := local.Hour()*60 + local.Minute()
	if start < end {
		return cur >= start && cur < end
	}
	// Wrapping window, e.g. 22:00 → 02:00.
	return cur >= start || cur < end
}

// minuteOfDay parses a zero-padded "HH:mm" into minutes since midnight.
func minuteOfDay(hhmm string) (int, bool) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(hhmm[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
