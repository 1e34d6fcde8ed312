package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

func TestTryAcquire_FreshKey(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})

	got, err := TryAcquire(context.Background(), db, "scheduler", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !got {
		t.Fatalf("fresh key should be acquirable")
	}
}

func TestTryAcquire_Contention(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})

	if got, err := TryAcquire(context.Background(), db, "k", time.Minute); err != nil || !got {
		t.Fatalf("first acquire = (%v, %v)", got, err)
	}
	// Second attempt while the first is live: contention, not an error.
	got, err := TryAcquire(context.Background(), db, "k", time.Minute)
	if err != nil {
		t.Fatalf("contended acquire errored: %v", err)
	}
	if got {
		t.Fatalf("second acquire should fail while lock is live")
	}
}

func TestTryAcquire_ExpiredLockIsReacquirable(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})
	now := time.Now().UTC()

	// Seed an already-expired row directly.
	expired := &domain.Lock{Key: "k", ExpiresAt: now.Add(-time.Second), CreatedAt: now.Add(-time.Minute)}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	got, err := TryAcquire(context.Background(), db, "k", time.Minute)
	if err != nil {
		t.Fatalf("acquire over expired: %v", err)
	}
	if !got {
		t.Fatalf("expired lock must be treated as absent")
	}
}

func TestTryAcquire_DistinctKeysIndependent(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})

	if got, _ := TryAcquire(context.Background(), db, "post:a", time.Minute); !got {
		t.Fatalf("post:a should acquire")
	}
	if got, _ := TryAcquire(context.Background(), db, "post:b", time.Minute); !got {
		t.Fatalf("post:b should acquire independently")
	}
}

func TestTryAcquire_Concurrent_ExactlyOneWinner(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := TryAcquire(context.Background(), db, "post:c1", time.Minute)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			if got {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t, &domain.Lock{})
	now := time.Now().UTC()

	rec := &domain.Lock{Key: "dup", ExpiresAt: now.Add(time.Minute), CreatedAt: now}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&domain.Lock{Key: "dup", ExpiresAt: now.Add(time.Minute), CreatedAt: now}).Error
	if err == nil {
		t.Fatalf("expected duplicate insert to fail")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("isUniqueViolation(%v) = false, want true", err)
	}
}
