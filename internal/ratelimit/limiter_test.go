package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewKeyedLimiter(5, 15*time.Minute)
	defer l.Close()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d should pass", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "sixth attempt should be blocked")
}

func TestKeyedLimiterKeysAreIndependent(t *testing.T) {
	l := NewKeyedLimiter(1, time.Hour)
	defer l.Close()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "a different client is not affected")
}

func TestKeyedLimiterEviction(t *testing.T) {
	l := NewKeyedLimiter(1, time.Hour)
	defer l.Close()

	l.Allow("10.0.0.1")

	l.mu.Lock()
	l.entries["10.0.0.1"].lastSeen = time.Now().Add(-3 * time.Hour)
	l.mu.Unlock()

	l.evict()

	l.mu.Lock()
	_, exists := l.entries["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, exists, "stale entries are dropped")
}
