// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Candidate
// model, including the state-machine transitions.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Transition semantics:
//   - Every transition is a conditional UPDATE guarded on the current
//     status; zero affected rows means the candidate is missing or has
//     already moved on, and ErrStaleTransition is returned. This is what
//     makes the state machine forward-only at the storage level: a posted
//     or skipped candidate can never be dragged back.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStaleTransition is returned when a state-machine transition matched no
// row: the candidate does not exist or is no longer in the expected source
// state. Callers treat it as "someone else got there first", not a failure.
var ErrStaleTransition = errors.New("stale transition")

// CreateCandidate inserts a new candidate in the queued state. The caller
// provides ID, platform, caption fields, and fingerprint data; CreatedAt is
// managed by GORM.
func CreateCandidate(ctx context.Context, db *gorm.DB, c *domain.Candidate) error {
	c.Status = domain.StatusQueued
	return db.WithContext(ctx).Create(c).Error
}

// GetCandidate fetches a single candidate by ID, or ErrNotFound.
func GetCandidate(ctx context.Context, db *gorm.DB, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCandidates returns the number of candidates matching the optional
// status and platform filters (empty string = no filter).
func CountCandidates(ctx context.Context, db *gorm.DB, status, platform string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Candidate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListCandidatesPage returns a page of candidates matching the optional
// status and platform filters, newest first. Use CountCandidates for
// pagination metadata.
func ListCandidatesPage(ctx context.Context, db *gorm.DB, status, platform string, offset, limit int) ([]domain.Candidate, error) {
	q := db.WithContext(ctx).Model(&domain.Candidate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	var out []domain.Candidate
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountScheduled returns the current scheduled backlog size across all
// platforms.
func CountScheduled(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("status = ?", domain.StatusScheduled).
		Count(&total).Error
	return total, err
}

// ListQueuedByEngagement returns up to limit queued candidates ordered by
// descending engagement score (ties broken by id for a stable order), so
// the highest-engagement content is considered for reposting first.
func ListQueuedByEngagement(ctx context.Context, db *gorm.DB, limit int) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusQueued).
		Order("engagement_score desc, id asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListDueScheduled returns up to limit scheduled candidates whose
// scheduled_at has passed, earliest-due first (fairness by wait time).
func ListDueScheduled(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", domain.StatusScheduled, now).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkScheduled transitions a candidate queued → scheduled and stamps
// scheduled_at (set exactly once, by this transition). Returns
// ErrStaleTransition if the candidate is not currently queued.
func MarkScheduled(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ? AND status = ?", id, domain.StatusQueued).
		Updates(map[string]any{"status": domain.StatusScheduled, "scheduled_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// MarkSkipped transitions a candidate to the terminal skipped state. Valid
// from queued (refill-time duplicate) and scheduled (commit-time duplicate).
func MarkSkipped(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ? AND status IN ?", id, []string{domain.StatusQueued, domain.StatusScheduled}).
		Update("status", domain.StatusSkipped)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// MarkPosted transitions a candidate scheduled → posted and stamps
// posted_at. The caller appends the matching PostedRecord in the same
// transaction so the fact and the transition commit atomically.
func MarkPosted(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ? AND status = ?", id, domain.StatusScheduled).
		Updates(map[string]any{"status": domain.StatusPosted, "posted_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}
