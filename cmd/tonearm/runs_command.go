package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg.Paths.CatalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(context.Background(), limitFlag)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRunHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of runs to show")
	return cmd
}
