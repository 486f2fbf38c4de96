package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter throttles attempts per key (typically a client IP). Each key
// gets a token bucket of burst tokens refilled over window; idle entries are
// evicted so the map stays bounded.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	limit  rate.Limit
	burst  int
	maxAge time.Duration

	stop chan struct{}
	once sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows at most burst attempts per window for each key.
func NewKeyedLimiter(burst int, window time.Duration) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &KeyedLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		maxAge:  2 * window,
		stop:    make(chan struct{}),
	}
	go l.evictLoop(window)
	return l
}

// Allow reports whether the key may make another attempt now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

func (l *KeyedLimiter) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evict()
		case <-l.stop:
			return
		}
	}
}

func (l *KeyedLimiter) evict() {
	cutoff := time.Now().Add(-l.maxAge)

	l.mu.Lock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()
}

// Close stops the background eviction loop.
func (l *KeyedLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
