package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero_capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}},
		{"zero_rate", ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}},
		{"zero_interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.cfg.Validate(), ratelimiter.ErrInvalidConfig)
		})
	}

	_, err := ratelimiter.NewBucket(nil, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucket_MemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryClock(clock.Now))
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:       3,
		RefillRate:     1,
		RefillInterval: time.Second,
	})
	require.NoError(t, err)

	for i := 2; i >= 0; i-- {
		res, err := limiter.Allow(ctx, "owner-a")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, i, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := limiter.Allow(ctx, "owner-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	other, err := limiter.Allow(ctx, "owner-b")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "keys are independent")

	clock.Advance(time.Second)
	res, err = limiter.Allow(ctx, "owner-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	clock.Advance(time.Hour)
	res, err = limiter.AllowN(ctx, "owner-a", 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "refill is capped at capacity")
	assert.Equal(t, 0, res.Remaining)

	_, err = limiter.AllowN(ctx, "owner-a", 4)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	require.NoError(t, limiter.Reset(ctx, "owner-a"))
	res, err = limiter.Allow(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestMemoryStore_RemoveIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryClock(clock.Now))
	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}

	_, _, err := store.ConsumeTokens(ctx, "old", 1, cfg)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, _, err = store.ConsumeTokens(ctx, "fresh", 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, store.RemoveIdle(time.Hour))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:       50,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(context.Background(), "k")
			if err == nil && res.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
