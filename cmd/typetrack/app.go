package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/integration/database/pg"
	"github.com/dmitrymomot/typetrack/internal/activity"
	"github.com/dmitrymomot/typetrack/internal/activity/pgstore"
	"github.com/dmitrymomot/typetrack/internal/db"
)

// connect opens the pool and applies migrations when migrate is set.
func connect(ctx context.Context, cfg Config, log *slog.Logger, migrate bool) (*pgxpool.Pool, error) {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := pg.MigrateFS(ctx, pool, db.Migrations, db.MigrationsDir, cfg.Postgres, log); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("migrations applied", logger.Component("database"))
	}
	return pool, nil
}

func newActivityService(pool *pgxpool.Pool, cfg Config, log *slog.Logger, rec activity.Recorder) *activity.Service {
	return activity.NewService(
		pgstore.New(pool),
		activity.WithStaleThreshold(cfg.StaleThreshold),
		activity.WithLogger(log),
		activity.WithRecorder(rec),
	)
}
