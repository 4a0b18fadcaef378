package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, limit int, w time.Duration) (*FixedWindowRateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := newFixedWindowLimiter(limit, w, clock.Now)
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	rl, clock := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		require.True(t, ok, "request %d", i+1)
	}

	clock.Advance(20 * time.Second)
	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other keys have their own window")
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	ok, _ := rl.Allow("k")
	require.True(t, ok)
	ok, _ = rl.Allow("k")
	require.False(t, ok)

	clock.Advance(time.Minute)
	ok, _ = rl.Allow("k")
	assert.True(t, ok)
}

func TestFixedWindow_SweepDropsExpired(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)
	rl.Allow("a")
	clock.Advance(30 * time.Second)
	rl.Allow("b")
	clock.Advance(31 * time.Second)

	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestFixedWindow_Concurrent(t *testing.T) {
	rl, _ := newTestLimiter(t, 50, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("k"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestFixedWindow_SweeperUsesInjectedClock(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Millisecond)
	rl.Allow("k")

	// The sweeper ticks every millisecond but the fake clock has not moved.
	time.Sleep(20 * time.Millisecond)
	rl.mu.Lock()
	assert.Contains(t, rl.clients, "k")
	rl.mu.Unlock()

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		_, ok := rl.clients["k"]
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFixedWindow_StopIsIdempotent(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Millisecond)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
