package main

import (
	"time"

	"github.com/dmitrymomot/typetrack/core/server"
	"github.com/dmitrymomot/typetrack/integration/database/pg"
	"github.com/dmitrymomot/typetrack/integration/database/redis"
)

// Config is loaded from the environment and an optional .env file.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"typetrack"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`

	StaleThreshold  time.Duration `env:"SESSION_STALE_THRESHOLD" envDefault:"300s"`
	StatsWindowDays int           `env:"STATS_WINDOW_DAYS" envDefault:"30"`

	// An empty schedule disables the in-process sweeper.
	SweepSchedule  string `env:"SWEEP_SCHEDULE" envDefault:"@every 1m"`
	SweepBatchSize int    `env:"SWEEP_BATCH_SIZE" envDefault:"500"`

	// RateLimitRequests <= 0 disables rate limiting.
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"120"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MigrateOnStart     bool     `env:"MIGRATE_ON_START" envDefault:"true"`

	Postgres pg.Config
	Redis    redis.Config
	Server   server.Config
}

func (c Config) isProduction() bool {
	return c.AppEnv == "production"
}
