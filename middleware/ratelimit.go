package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/pkg/ratelimiter"
)

// RateLimitConfig configures rate limiting.
type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defaults to the client IP of RemoteAddr.
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler defaults to 429 with retry_after details.
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) handler.Response
	// SetHeaders adds X-RateLimit-* and Retry-After headers.
	SetHeaders bool
}

// RateLimit rejects requests whose key has exhausted its bucket. Panics without a limiter.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx handler.Context) string {
			addr := ctx.Request().RemoteAddr
			if host, _, err := net.SplitHostPort(addr); err == nil {
				return host
			}
			return addr
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, result *ratelimiter.Result) handler.Response {
			err := response.ErrTooManyRequests
			if secs := retryAfterSeconds(result); secs > 0 {
				err = err.WithDetails(map[string]any{"retry_after": secs})
			}
			return response.Error(err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(response.ErrInternalServerError.WithError(err))
			}

			if cfg.SetHeaders {
				setRateLimitHeaders(ctx.ResponseWriter().Header(), result)
			}

			if !result.Allowed() {
				return cfg.ErrorHandler(ctx, result)
			}
			return next(ctx)
		}
	}
}

func setRateLimitHeaders(h http.Header, result *ratelimiter.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if secs := retryAfterSeconds(result); secs > 0 {
		h.Set("Retry-After", strconv.Itoa(secs))
	}
}

func retryAfterSeconds(result *ratelimiter.Result) int {
	if result == nil || result.Allowed() {
		return 0
	}
	return int(math.Ceil(result.RetryAfter().Seconds()))
}
