// Package services – SettingsService
//
// This file implements SettingsService, the read/update surface for the
// single-row settings snapshot the autopilot engine consumes each tick.
// Updates are validated here so the engine can trust any snapshot it reads.
package services

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/repo"
)

// hhmmRE matches zero-padded local wall-clock times ("00:00".."23:59").
var hhmmRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// SettingsService owns the settings snapshot.
type SettingsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the current snapshot (defaults when none was ever saved).
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return repo.GetSettings(ctx, s.DB)
}

// Update validates and persists a new snapshot. The engine picks it up on
// its next refill/pacing invocation; nothing is cached across ticks.
func (s *SettingsService) Update(ctx context.Context, in domain.Settings) (domain.Settings, error) {
	if err := validateSettings(in); err != nil {
		return domain.Settings{}, err
	}
	in.ID = 1
	if err := repo.SaveSettings(ctx, s.DB, in); err != nil {
		return domain.Settings{}, err
	}
	return repo.GetSettings(ctx, s.DB)
}

// validateSettings enforces the invariants the engine relies on.
func validateSettings(in domain.Settings) error {
	if in.HourlyLimit < 1 {
		return fmt.Errorf("%w: hourly_limit must be >= 1", ErrInvalidSettings)
	}
	if in.DailyLimit < in.HourlyLimit {
		return fmt.Errorf("%w: daily_limit must be >= hourly_limit", ErrInvalidSettings)
	}
	if in.MinEngagement < 0 {
		return fmt.Errorf("%w: min_engagement must be >= 0", ErrInvalidSettings)
	}
	if in.RecencyWindow < 1 {
		return fmt.Errorf("%w: recency_window must be >= 1", ErrInvalidSettings)
	}
	if in.TargetBacklog < 1 {
		return fmt.Errorf("%w: target_backlog must be >= 1", ErrInvalidSettings)
	}
	if in.BurstEnabled {
		if !hhmmRE.MatchString(in.BurstStart) || !hhmmRE.MatchString(in.BurstEnd) {
			return fmt.Errorf("%w: burst window times must be zero-padded HH:mm", ErrInvalidSettings)
		}
		if in.BurstPostsPerHour < 1 {
			return fmt.Errorf("%w: burst_posts_per_hour must be >= 1", ErrInvalidSettings)
		}
	}
	return nil
}
