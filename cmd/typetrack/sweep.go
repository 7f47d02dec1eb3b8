package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/internal/sweeper"
)

func newSweepCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close stale sessions once and exit",
		Long:  "sweep auto-closes every open session idle longer than SESSION_STALE_THRESHOLD, batch by batch, for use from an external scheduler.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := fromContext(cmd)
			if err != nil {
				return err
			}
			if batch <= 0 {
				batch = cfg.SweepBatchSize
			}

			pool, err := connect(cmd.Context(), cfg, log, false)
			if err != nil {
				return err
			}
			defer pool.Close()

			sw := sweeper.New(
				newActivityService(pool, cfg, log, nil),
				sweeper.WithBatchSize(batch),
				sweeper.WithLogger(log),
			)

			total, err := drain(cmd.Context(), sw)
			if err != nil {
				return err
			}
			log.Info("sweep finished", logger.Count("closed", total))
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "sessions per batch (default SWEEP_BATCH_SIZE)")
	return cmd
}

type onceRunner interface {
	RunOnce(ctx context.Context) (int, error)
}

// drain repeats sweeps until one closes nothing. A short batch is not enough
// to stop: candidates heartbeated mid-sweep are skipped, not counted.
func drain(ctx context.Context, r onceRunner) (int, error) {
	total := 0
	for {
		n, err := r.RunOnce(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
}
