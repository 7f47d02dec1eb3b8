package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript refills and consumes atomically. State is a hash with the
// token count and the last refill time in milliseconds.
//
// KEYS[1] bucket key
// ARGV: capacity, refill rate, refill interval ms, tokens, now ms, ttl ms
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local want = tonumber(ARGV[4])
local now = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

if now > last then
	local intervals = math.floor((now - last) / interval)
	if intervals >= math.floor(capacity / rate) + 1 then
		tokens = capacity
		last = now
	elseif intervals > 0 then
		tokens = math.min(tokens + intervals * rate, capacity)
		last = last + intervals * interval
	end
end

local remaining
if tokens < want then
	remaining = tokens - want
else
	tokens = tokens - want
	remaining = tokens
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last', last)
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, last + interval}
`)

// RedisStore keeps bucket state in Redis.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces bucket keys. Default "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) { rs.prefix = prefix }
}

// WithRedisClock overrides the time source sent to the script.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(rs *RedisStore) {
		if now != nil {
			rs.now = now
		}
	}
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{client: client, prefix: "ratelimit:", now: time.Now}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	intervalMs := cfg.RefillInterval.Milliseconds()
	if intervalMs <= 0 {
		intervalMs = 1
	}
	// Keep state until a full bucket would have refilled, plus one interval.
	ttl := intervalMs * int64(cfg.Capacity/cfg.RefillRate+2)

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.prefix + key},
		cfg.Capacity, cfg.RefillRate, intervalMs, tokens, rs.now().UnixMilli(), ttl,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}

	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	return rs.client.Del(ctx, rs.prefix+key).Err()
}
