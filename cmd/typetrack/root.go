package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/typetrack/core/config"
	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/middleware"
)

var version = "dev"

var errNoConfig = errors.New("configuration not loaded")

type cfgKey struct{}

type logKey struct{}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "typetrack",
		Short:         "Typing activity tracker",
		Long:          "typetrack records typing sessions and serves per-day activity statistics.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var cfg Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log := newLogger(cfg)
			logger.SetAsDefault(log)

			ctx := context.WithValue(cmd.Context(), cfgKey{}, cfg)
			cmd.SetContext(context.WithValue(ctx, logKey{}, log))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSweepCmd(),
		newTokenCmd(),
	)
	return cmd
}

func newLogger(cfg Config) *slog.Logger {
	mode := logger.WithDevelopment(cfg.AppName)
	if cfg.isProduction() {
		mode = logger.WithProduction(cfg.AppName)
	}
	return logger.New(
		mode,
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithAttr(logger.Version(version)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	)
}

func fromContext(cmd *cobra.Command) (Config, *slog.Logger, error) {
	cfg, ok := cmd.Context().Value(cfgKey{}).(Config)
	if !ok {
		return Config{}, nil, errNoConfig
	}
	log, ok := cmd.Context().Value(logKey{}).(*slog.Logger)
	if !ok {
		log = slog.Default()
	}
	return cfg, log, nil
}
