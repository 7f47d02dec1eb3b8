// Package ratelimiter implements token bucket rate limiting over a pluggable Store.
//
// A Bucket holds the policy (capacity and refill rate); the Store holds the
// per-key state. MemoryStore serves single-instance deployments and tests;
// RedisStore keeps state in Redis so limits hold across instances.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb), ratelimiter.Config{
//		Capacity:       120,
//		RefillRate:     120,
//		RefillInterval: time.Minute,
//	})
//
//	res, err := limiter.Allow(ctx, "owner:"+ownerID)
//	if err == nil && !res.Allowed() {
//		// 429, Retry-After: res.RetryAfter()
//	}
package ratelimiter
