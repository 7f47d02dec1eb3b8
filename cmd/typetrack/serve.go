package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/core/server"
	"github.com/dmitrymomot/typetrack/integration/database/pg"
	"github.com/dmitrymomot/typetrack/integration/database/redis"
	"github.com/dmitrymomot/typetrack/internal/api"
	"github.com/dmitrymomot/typetrack/internal/metrics"
	"github.com/dmitrymomot/typetrack/internal/sweeper"
	"github.com/dmitrymomot/typetrack/internal/users"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
	"github.com/dmitrymomot/typetrack/pkg/ratelimiter"
)

// rateLimitIdle is how long an untouched in-memory bucket is kept.
const rateLimitIdle = 10 * time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := fromContext(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	pool, err := connect(ctx, cfg, log, cfg.MigrateOnStart)
	if err != nil {
		return err
	}
	defer pool.Close()

	checks := []func(context.Context) error{pg.Healthcheck(pool)}

	signer, err := jwt.NewFromString(cfg.JWTSigningKey)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := newActivityService(pool, cfg, log, m)

	sw := sweeper.New(svc,
		sweeper.WithBatchSize(cfg.SweepBatchSize),
		sweeper.WithLogger(log),
		sweeper.WithObserver(m),
	)
	if cfg.SweepSchedule != "" {
		if err := sw.Schedule(cfg.SweepSchedule); err != nil {
			return err
		}
	}

	var limiter ratelimiter.RateLimiter
	if cfg.RateLimitRequests > 0 {
		var store ratelimiter.Store
		if cfg.Redis.Enabled() {
			client, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()
			checks = append(checks, redis.Healthcheck(client))
			store = ratelimiter.NewRedisStore(client)
		} else {
			mem := ratelimiter.NewMemoryStore()
			if err := sw.AddJob("@every 5m", "ratelimit_gc", func(context.Context) error {
				if n := mem.RemoveIdle(rateLimitIdle); n > 0 {
					log.Debug("rate limit buckets evicted", logger.Component("ratelimit"), logger.Count("evicted", n))
				}
				return nil
			}); err != nil {
				return err
			}
			store = mem
		}

		limiter, err = ratelimiter.NewBucket(store, ratelimiter.Config{
			Capacity:       cfg.RateLimitRequests,
			RefillRate:     cfg.RateLimitRequests,
			RefillInterval: cfg.RateLimitWindow,
		})
		if err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Config{
		AppName:         cfg.AppName,
		Logger:          log,
		Activity:        svc,
		Users:           users.NewPGRepository(pool),
		JWT:             signer,
		StatsWindowDays: cfg.StatsWindowDays,
		Limiter:         limiter,
		Metrics:         m.Handler(),
		ReadinessChecks: checks,
		AllowOrigins:    cfg.CORSAllowedOrigins,
	})

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, router))
	eg.Go(sw.Run(ctx))

	if err := eg.Wait(); err != nil {
		return err
	}
	log.Info("application stopped")
	return nil
}
