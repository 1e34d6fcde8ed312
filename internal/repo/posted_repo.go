// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only PostedRecord log.
//
// PostedRecords are facts: written exactly once per successful post, never
// updated, never deleted by this layer. Retention/pruning is an external
// concern.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

// AppendPosted inserts an immutable posted record. It is intended to run in
// the same transaction as the matching scheduled → posted transition.
func AppendPosted(ctx context.Context, db *gorm.DB, rec *domain.PostedRecord) error {
	return db.WithContext(ctx).Create(rec).Error
}

// ListRecentPosted returns the last n posted records for a platform,
// most-recent first. This is the duplicate classifier's recency window.
func ListRecentPosted(ctx context.Context, db *gorm.DB, platform string, n int) ([]domain.PostedRecord, error) {
	var out []domain.PostedRecord
	err := db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("posted_at desc").
		Limit(n).
		Find(&out).Error
	return out, err
}

// CountPostedSince returns how many records a platform has accumulated with
// posted_at strictly after the cutoff. Pacing uses it with a trailing
// 60-minute (and 24-hour) cutoff: a sliding window, not a calendar bucket.
func CountPostedSince(ctx context.Context, db *gorm.DB, platform string, cutoff time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PostedRecord{}).
		Where("platform = ? AND posted_at > ?", platform, cutoff).
		Count(&total).Error
	return total, err
}
