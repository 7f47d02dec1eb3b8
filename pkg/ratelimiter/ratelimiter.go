package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RateLimiter decides whether a key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

// Store persists bucket state. ConsumeTokens refills the bucket for the time
// elapsed since the last refill, subtracts tokens and returns what is left;
// a negative remainder means the request was rejected and nothing was consumed.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// Config is the bucket policy.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

// Validate reports whether the policy is usable.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result describes a rate limit decision.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	now       time.Time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a rejected caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	if d := r.ResetAt.Sub(r.now); d > 0 {
		return d
	}
	return 0
}

// Bucket is a token bucket RateLimiter.
type Bucket struct {
	store  Store
	config Config
	now    func() time.Time
}

// NewBucket validates cfg and returns a limiter over store.
func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: cfg, now: time.Now}, nil
}

// Allow consumes one token.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 || n > b.config.Capacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		now:       b.now(),
	}, nil
}

// Reset clears the state of key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

// refill returns the token count after refilling for the time since last.
func refill(tokens int, last, now time.Time, cfg Config) (int, time.Time) {
	if now.Before(last) {
		return tokens, last
	}
	intervals := int64(now.Sub(last) / cfg.RefillInterval)
	if intervals <= 0 {
		return tokens, last
	}
	// Past this many intervals the bucket is full regardless.
	if maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1); intervals >= maxIntervals {
		return cfg.Capacity, now
	}
	tokens = min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
	return tokens, last.Add(time.Duration(intervals) * cfg.RefillInterval)
}
