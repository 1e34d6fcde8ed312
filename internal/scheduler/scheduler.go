// Package scheduler drives the periodic autopilot tick. A single cron entry
// ("@every <interval>") invokes the engine's RunTick; distributed exclusion
// is the engine's job (global TTL lock), so the runner stays a dumb clock.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/reelpilot/go-autopilot-backend/internal/services"
)

// DefaultInterval is the tick period when none is configured. It is chosen
// together with services.SchedulerLockTTL (55s): the lock always expires
// before the next tick fires.
const DefaultInterval = 60 * time.Second

// Runner owns the cron loop around AutopilotService.RunTick.
type Runner struct {
	mu sync.Mutex

	engine   *services.AutopilotService
	log      zerolog.Logger
	interval time.Duration

	c *cron.Cron
}

// New constructs a Runner ticking every interval (DefaultInterval when
// interval <= 0).
func New(engine *services.AutopilotService, interval time.Duration, log zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{engine: engine, interval: interval, log: log}
}

// Start begins ticking. Safe to call once; subsequent calls are no-ops.
// Tick bodies run on cron's goroutine; RunTick never panics outward, so the
// loop cannot die to a bad tick.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("@every "+r.interval.String(), func() {
		res := r.engine.RunTick(ctx)
		switch {
		case !res.Ran:
			r.log.Debug().Msg("tick skipped: scheduler lock held elsewhere")
		case res.Error != "":
			r.log.Warn().
				Str("error", res.Error).
				Int("added", res.Added).
				Int("posted", res.Posted).
				Msg("tick finished with error")
		default:
			r.log.Info().
				Int("added", res.Added).
				Int("posted", res.Posted).
				Int("skipped", res.Skipped).
				Msg("tick ok")
		}
	})
	if err != nil {
		return err
	}

	r.c = c
	c.Start()
	r.log.Info().Dur("interval", r.interval).Msg("autopilot scheduler started")
	return nil
}

// Stop halts the loop and waits for any in-flight tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c == nil {
		return
	}
	<-r.c.Stop().Done()
	r.c = nil
	r.log.Info().Msg("autopilot scheduler stopped")
}
