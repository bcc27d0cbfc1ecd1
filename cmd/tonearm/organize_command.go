package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/organize"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		moveFlag     bool
		forceFlag    bool
		simulateFlag bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Ingest source files into the library tree",
		Long: `Scans the source directory for MP3 and FLAC files and files each
one under Artist/Album/Title in the library. Tracks without a readable
album tag are placed in the artist's "Unknown Album" folder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withLibraryLock(func() error {
				runCtx, cancel := signalContext()
				defer cancel()

				index, err := library.Scan(cfg.Paths.LibraryDir)
				if err != nil {
					return err
				}
				organizer := organize.New(index, organize.Options{
					Move:     moveFlag,
					Force:    forceFlag,
					Simulate: simulateFlag,
				}, organize.WithLogger(logger))

				started := time.Now()
				summary, results, err := organizer.Run(runCtx, cfg.Paths.SourceDir)
				if err != nil {
					return err
				}

				for _, result := range results {
					if result.Err != nil {
						logger.Warn("ingest failure",
							logging.String("source", result.Source),
							logging.Error(result.Err))
					}
				}

				if !simulateFlag {
					recordRun(logger, cfg.Paths.CatalogPath, catalog.Run{
						ID:         uuid.NewString(),
						Command:    "organize",
						StartedAt:  started,
						FinishedAt: time.Now(),
						Processed:  summary.Scanned,
						Resolved:   summary.Placed,
						Duplicates: summary.Duplicates,
						Unresolved: summary.Failures,
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderCounters(
					[]string{"Scanned", "Placed", "Duplicates", "Failures"},
					[]int{summary.Scanned, summary.Placed, summary.Duplicates, summary.Failures},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&moveFlag, "move", false, "Remove source files after placement")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Replace tracks that already exist in the library")
	cmd.Flags().BoolVar(&simulateFlag, "simulate", false, "Report actions without touching files")
	return cmd
}
