// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the TTL lock used both as the global
// scheduler mutex and as the per-candidate posting claim.
//
// The lock is a create-only record: at most one live row per key. There is
// no release operation; rows self-expire, which trades slightly longer
// unavailability for crash-safety (a crashed holder cannot leave a
// permanent lock). Correctness depends on "evict expired + insert" being
// atomic, which is why TryAcquire runs both statements in one transaction.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

// ErrLockHeld indicates that a live lock already exists for the key.
// Contention is an expected signal, not a failure.
var ErrLockHeld = errors.New("lock held")

// TryAcquire attempts to take the lock for key with the given TTL.
//
// Semantics:
//   - Returns (true, nil) iff the insert succeeded, meaning no live row
//     for the key existed at that instant.
//   - Returns (false, nil) on contention (a non-expired row holds the key).
//   - Returns (false, err) only on storage failure.
//
// Implementation: inside one transaction, expired rows for the key are
// evicted, then a fresh row is inserted. A unique-constraint violation on
// the insert means a live holder exists.
func TryAcquire(ctx context.Context, db *gorm.DB, key string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A row whose TTL has passed is treated as absent.
		if err := tx.Where("key = ? AND expires_at <= ?", key, now).
			Delete(&domain.Lock{}).Error; err != nil {
			return err
		}
		rec := &domain.Lock{
			Key:       key,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}
		if err := tx.Create(rec).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrLockHeld
			}
			return err
		}
		return nil
	})
	if errors.Is(err, ErrLockHeld) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// isUniqueViolation reports whether err is a primary/unique key conflict.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
