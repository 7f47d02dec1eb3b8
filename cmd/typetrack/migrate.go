package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := fromContext(cmd)
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), cfg, log, true)
			if err != nil {
				return err
			}
			pool.Close()
			return nil
		},
	}
}
