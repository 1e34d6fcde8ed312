package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/events"
	"github.com/reelpilot/go-autopilot-backend/internal/services"
)

func newEngine(t *testing.T) *services.AutopilotService {
	t.Helper()
	dsn := fmt.Sprintf("file:scheduler_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Candidate{}, &domain.PostedRecord{}, &domain.Lock{}, &domain.Settings{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return services.NewAutopilotService(db, events.NewRing(8))
}

func TestNew_DefaultsInterval(t *testing.T) {
	r := New(newEngine(t), 0, zerolog.Nop())
	if r.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", r.interval, DefaultInterval)
	}
	r2 := New(newEngine(t), 5*time.Second, zerolog.Nop())
	if r2.interval != 5*time.Second {
		t.Fatalf("interval = %v, want 5s", r2.interval)
	}
}

func TestStartStop_Lifecycle(t *testing.T) {
	r := New(newEngine(t), time.Hour, zerolog.Nop())
	ctx := context.Background()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Idempotent start.
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}

	r.Stop()
	if r.c != nil {
		t.Fatalf("cron not cleared after stop")
	}
	// Stop on a stopped runner is a no-op.
	r.Stop()

	// A stopped runner can be started again.
	if err := r.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	r.Stop()
}
