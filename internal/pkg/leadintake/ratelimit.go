package leadintake

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowStore counts hits per key inside a fixed window. The first hit of a
// window starts it; the count resets when the window lapses, never sliding.
type WindowStore interface {
	Incr(key string, window time.Duration) (int64, error)
}

// Limiter enforces a fixed-window submission cap per key.
type Limiter struct {
	store  WindowStore
	limit  int64
	window time.Duration
}

// NewLimiter creates a limiter allowing `limit` hits per `window`.
func NewLimiter(store WindowStore, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow counts a hit and reports whether it is within the cap. Store errors
// fail open: a broken counter must not block homeowners from submitting.
func (l *Limiter) Allow(key string) bool {
	count, err := l.store.Incr(key, l.window)
	if err != nil {
		log.Printf("[LeadIntake] rate limit store error for %s: %v", key, err)
		return true
	}
	return count <= l.limit
}

type memoryWindow struct {
	count   int64
	startAt time.Time
}

type memoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryWindowStore creates a process-local window counter. Counts are per
// instance; that is acceptable for abuse throttling.
func NewMemoryWindowStore() WindowStore {
	return &memoryWindowStore{windows: make(map[string]*memoryWindow)}
}

func (s *memoryWindowStore) Incr(key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.startAt) >= window {
		w = &memoryWindow{startAt: now}
		s.windows[key] = w
	}
	w.count++

	// Opportunistic cleanup of lapsed windows.
	if len(s.windows) > 10000 {
		for k, v := range s.windows {
			if now.Sub(v.startAt) >= window {
				delete(s.windows, k)
			}
		}
	}
	return w.count, nil
}

type redisWindowStore struct {
	client *redis.Client
}

// NewRedisWindowStore creates a window counter shared across instances.
func NewRedisWindowStore(client *redis.Client) WindowStore {
	return &redisWindowStore{client: client}
}

func (s *redisWindowStore) Incr(key string, window time.Duration) (int64, error) {
	ctx := context.Background()
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
