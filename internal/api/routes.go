package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/health"
	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/core/router"
	"github.com/dmitrymomot/typetrack/internal/activity"
	"github.com/dmitrymomot/typetrack/internal/users"
	"github.com/dmitrymomot/typetrack/middleware"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
	"github.com/dmitrymomot/typetrack/pkg/ratelimiter"
)

type Context = *router.Context

// Config wires the HTTP surface.
type Config struct {
	AppName string
	Logger  *slog.Logger

	Activity *activity.Service
	Users    users.Repository
	JWT      *jwt.Service

	// StatsWindowDays is the default of the days query parameter.
	StatsWindowDays int
	// Limiter throttles /api/activity per user when set.
	Limiter ratelimiter.RateLimiter
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// ReadinessChecks back /ready.
	ReadinessChecks []func(context.Context) error
	AllowOrigins    []string
}

// NewRouter builds the application router.
func NewRouter(cfg Config) router.Router[Context] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	name := cfg.AppName
	if name == "" {
		name = "typetrack"
	}

	r := router.New[Context](
		router.WithErrorHandler(response.JSONErrorHandler[Context]),
		router.WithLogger[Context](log),
	)
	r.Use(
		middleware.RequestID[Context](),
		middleware.LoggingWithLogger[Context](log),
		middleware.CORSWithConfig[Context](middleware.CORSConfig{AllowOrigins: cfg.AllowOrigins}),
	)

	r.Get("/", func(Context) handler.Response {
		return response.JSON(map[string]string{
			"message": name + " API",
			"status":  "running",
		})
	})
	r.Get("/health", health.Status[Context])
	r.Get("/live", health.Liveness[Context])
	r.Get("/ready", health.Readiness[Context](log, cfg.ReadinessChecks...))
	if cfg.Metrics != nil {
		r.Get("/metrics", func(Context) handler.Response {
			return response.Handler(cfg.Metrics)
		})
	}

	h := NewHandlers(cfg.Activity, cfg.StatsWindowDays)
	r.Route("/api/activity", func(r router.Router[Context]) {
		r.Use(
			middleware.JWTWithConfig[Context](middleware.JWTConfig{
				Service:       cfg.JWT,
				ClaimsFactory: func() any { return &Claims{} },
			}),
			Identity[Context](cfg.Users),
		)
		if cfg.Limiter != nil {
			r.Use(middleware.RateLimit[Context](middleware.RateLimitConfig{
				Limiter:      cfg.Limiter,
				KeyExtractor: userKey,
				SetHeaders:   true,
			}))
		}

		r.Post("/start", h.Start)
		r.Post("/end", h.End)
		r.Get("/sessions", h.List)
		r.Get("/session/{id}", h.Get)
		r.Get("/stats", h.Stats)
	})

	for _, route := range r.Routes() {
		log.Debug("route registered",
			logger.Component("api"),
			logger.Method(route.Method),
			logger.Path(route.Pattern),
		)
	}
	return r
}

func userKey(ctx handler.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return "user:" + u.ID.String()
	}
	return "anon:" + ctx.Request().RemoteAddr
}
