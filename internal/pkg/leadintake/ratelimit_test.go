package leadintake

import (
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Incr(key string, window time.Duration) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestLimiterFixedWindow(t *testing.T) {
	limiter := NewLimiter(NewMemoryWindowStore(), 2, 25*time.Millisecond)

	if !limiter.Allow("ip:1") || !limiter.Allow("ip:1") {
		t.Fatalf("first two hits must pass")
	}
	if limiter.Allow("ip:1") {
		t.Fatalf("third hit inside the window must be blocked")
	}
	if !limiter.Allow("ip:2") {
		t.Fatalf("keys must not share windows")
	}

	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("ip:1") {
		t.Fatalf("a lapsed window must reset the count")
	}
}

func TestLimiterFailsOpen(t *testing.T) {
	limiter := NewLimiter(failingStore{}, 1, time.Minute)
	if !limiter.Allow("ip:1") {
		t.Fatalf("a broken store must fail open")
	}
}

func TestMemoryWindowStoreCounts(t *testing.T) {
	store := NewMemoryWindowStore()
	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr("k", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Fatalf("count = %d, want %d", got, want)
		}
	}
}
