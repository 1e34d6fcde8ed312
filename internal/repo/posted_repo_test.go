package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

func TestAppendAndListRecentPosted_WindowOrderAndSize(t *testing.T) {
	db := newTestDB(t, &domain.PostedRecord{})
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		rec := &domain.PostedRecord{
			ID:                fmt.Sprintf("p%d", i),
			CandidateID:       fmt.Sprintf("c%d", i),
			Platform:          domain.PlatformInstagram,
			PostedAt:          base.Add(time.Duration(i) * time.Minute),
			NormalizedCaption: "caption",
		}
		if err := AppendPosted(ctx, db, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	// A record on another platform must never leak into the window.
	other := &domain.PostedRecord{
		ID: "tiktok-1", CandidateID: "cx", Platform: domain.PlatformTikTok,
		PostedAt: base.Add(time.Hour), NormalizedCaption: "caption",
	}
	if err := AppendPosted(ctx, db, other); err != nil {
		t.Fatalf("append other platform: %v", err)
	}

	window, err := ListRecentPosted(ctx, db, domain.PlatformInstagram, 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("window size = %d, want 3", len(window))
	}
	// Most-recent first.
	if window[0].ID != "p4" || window[1].ID != "p3" || window[2].ID != "p2" {
		t.Fatalf("unexpected window order: %v, %v, %v", window[0].ID, window[1].ID, window[2].ID)
	}
}

func TestCountPostedSince_SlidingWindow(t *testing.T) {
	db := newTestDB(t, &domain.PostedRecord{})
	ctx := context.Background()
	now := time.Now().UTC()

	mk := func(id string, platform string, at time.Time) {
		rec := &domain.PostedRecord{
			ID: id, CandidateID: "c-" + id, Platform: platform,
			PostedAt: at, NormalizedCaption: "x",
		}
		if err := AppendPosted(ctx, db, rec); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	mk("in1", domain.PlatformInstagram, now.Add(-10*time.Minute))
	mk("in2", domain.PlatformInstagram, now.Add(-50*time.Minute))
	mk("out-old", domain.PlatformInstagram, now.Add(-2*time.Hour))
	mk("out-platform", domain.PlatformTikTok, now.Add(-5*time.Minute))

	n, err := CountPostedSince(ctx, db, domain.PlatformInstagram, now.Add(-time.Hour))
	if err != nil || n != 2 {
		t.Fatalf("trailing hour = (%d, %v), want 2", n, err)
	}
	n, err = CountPostedSince(ctx, db, domain.PlatformInstagram, now.Add(-24*time.Hour))
	if err != nil || n != 3 {
		t.Fatalf("trailing day = (%d, %v), want 3", n, err)
	}
}

func TestCountPostedSince_CutoffIsExclusive(t *testing.T) {
	db := newTestDB(t, &domain.PostedRecord{})
	ctx := context.Background()
	cutoff := time.Now().UTC().Truncate(time.Second)

	rec := &domain.PostedRecord{
		ID: "edge", CandidateID: "c", Platform: domain.PlatformTikTok,
		PostedAt: cutoff, NormalizedCaption: "x",
	}
	if err := AppendPosted(ctx, db, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	// posted_at > cutoff is strict: a record exactly at the cutoff is out.
	n, err := CountPostedSince(ctx, db, domain.PlatformTikTok, cutoff)
	if err != nil || n != 0 {
		t.Fatalf("count at exact cutoff = (%d, %v), want 0", n, err)
	}
}
