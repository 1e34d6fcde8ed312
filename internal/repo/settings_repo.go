// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the single-row settings snapshot.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

// GetSettings returns the stored settings snapshot, or the defaults when no
// row has been saved yet. The autopilot engine calls this once per refill
// and pacing invocation; it never caches across ticks so operator changes
// take effect on the next tick.
func GetSettings(ctx context.Context, db *gorm.DB) (domain.Settings, error) {
	var s domain.Settings
	err := db.WithContext(ctx).First(&s, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultSettings(), nil
	}
	return s, err
}

// SaveSettings upserts the single settings row. Validation happens in the
// service layer; this is pure persistence.
func SaveSettings(ctx context.Context, db *gorm.DB, s domain.Settings) error {
	s.ID = 1
	return db.WithContext(ctx).Save(&s).Error
}
