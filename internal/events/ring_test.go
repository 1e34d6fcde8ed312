package events

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewRing_CapacityDefaults(t *testing.T) {
	r := NewRing(0)
	if got := cap(r.buf); got != DefaultCapacity {
		t.Fatalf("default capacity = %d, want %d", got, DefaultCapacity)
	}
	r2 := NewRing(3)
	if got := cap(r2.buf); got != 3 {
		t.Fatalf("capacity = %d, want 3", got)
	}
}

func TestAppend_StampsTime(t *testing.T) {
	r := NewRing(4)
	r.Append(Event{Type: TypeTick, Message: "m"})
	got := r.Recent(1)
	if len(got) != 1 || got[0].At.IsZero() {
		t.Fatalf("expected stamped event, got %+v", got)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.Append(Event{Type: TypeTick, Message: "pinned", At: at})
	if got := r.Recent(1); !got[0].At.Equal(at) {
		t.Fatalf("explicit At overwritten: %v", got[0].At)
	}
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 5; i++ {
		r.Append(Event{Type: TypeTick, Message: fmt.Sprintf("e%d", i)})
	}

	got := r.Recent(3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Message != "e4" || got[1].Message != "e3" || got[2].Message != "e2" {
		t.Fatalf("order wrong: %v %v %v", got[0].Message, got[1].Message, got[2].Message)
	}

	// limit <= 0 or beyond count returns everything retained.
	if got := r.Recent(0); len(got) != 5 {
		t.Fatalf("Recent(0) len = %d, want 5", len(got))
	}
	if got := r.Recent(100); len(got) != 5 {
		t.Fatalf("Recent(100) len = %d, want 5", len(got))
	}
}

func TestAppend_EvictsOldestWhenFull(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Append(Event{Type: TypeTick, Message: fmt.Sprintf("e%d", i)})
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	got := r.Recent(0)
	if got[0].Message != "e4" || got[2].Message != "e2" {
		t.Fatalf("eviction wrong, retained: %v .. %v", got[0].Message, got[2].Message)
	}
}

func TestRing_ConcurrentAppends(t *testing.T) {
	r := NewRing(64)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Append(Event{Type: TypePosted, Message: fmt.Sprintf("g%d-%d", n, j)})
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 64 {
		t.Fatalf("Len = %d, want full ring 64", r.Len())
	}
	if got := r.Recent(0); len(got) != 64 {
		t.Fatalf("Recent(0) len = %d, want 64", len(got))
	}
}
