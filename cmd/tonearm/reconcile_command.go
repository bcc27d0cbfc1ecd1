package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var (
		simulateFlag  bool
		keepEmptyFlag bool
		forceFlag     bool
		attachArtFlag bool
		workersFlag   int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Resolve Unknown Album tracks and move them into place",
		Long: `Queries MusicBrainz and Last.fm for every track filed under an
"Unknown Album" folder, scores the candidates, and moves confidently
identified tracks to their resolved Artist/Album/Title location. Tracks
whose placement already exists are reported as duplicates and left
untouched; everything else stays in Unknown Album for a later run.`,
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
				resolvers, err := buildResolvers(cfg, logger)
				if err != nil {
					return err
				}

				workers := workersFlag
				if workers <= 0 {
					workers = cfg.Workers.ProviderWorkers
				}
				opts := reconcile.Options{
					Simulate:  simulateFlag,
					KeepEmpty: keepEmptyFlag || cfg.Library.KeepEmptyFolders,
					Overwrite: forceFlag || cfg.Library.OverwriteExisting,
					AttachArt: attachArtFlag,
					Workers:   workers,
				}

				engineOpts := []reconcile.EngineOption{reconcile.WithLogger(logger)}
				if attachArtFlag {
					art, err := buildArtResolver(cfg, logger)
					if err != nil {
						return err
					}
					engineOpts = append(engineOpts, reconcile.WithArtwork(art))
				}

				store, err := catalog.Open(cfg.Paths.CatalogPath)
				if err != nil {
					logger.Warn("catalog unavailable, resolutions not cached", logging.Error(err))
				} else {
					defer store.Close()
					engineOpts = append(engineOpts, reconcile.WithCache(store))
				}

				engine := reconcile.NewEngine(index, resolvers, scorerFromConfig(cfg), opts, engineOpts...)

				started := time.Now()
				summary, results, err := engine.Run(runCtx)
				if err != nil {
					logger.Warn("run interrupted", logging.Error(err))
				}

				for _, result := range results {
					if result.Outcome == reconcile.OutcomeMoveFailed {
						logger.Warn("move failure",
							logging.String("path", result.Entry.Path),
							logging.Error(result.Err))
					}
				}

				if !simulateFlag && store != nil {
					recordRun(logger, cfg.Paths.CatalogPath, catalog.Run{
						ID:           uuid.NewString(),
						Command:      "reconcile",
						StartedAt:    started,
						FinishedAt:   time.Now(),
						Processed:    summary.Processed,
						Resolved:     summary.Resolved,
						Unresolved:   summary.Unresolved,
						Duplicates:   summary.Duplicates,
						MoveFailures: summary.MoveFailures,
						ArtAttached:  summary.ArtAttached,
						ArtFailures:  summary.ArtFailures,
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderCounters(
					[]string{"Processed", "Resolved", "Unresolved", "Duplicates", "Move failures", "Art attached", "Art failures"},
					[]int{
						summary.Processed,
						summary.Resolved,
						summary.Unresolved,
						summary.Duplicates,
						summary.MoveFailures,
						summary.ArtAttached,
						summary.ArtFailures,
					},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&simulateFlag, "simulate", false, "Report actions without touching files")
	cmd.Flags().BoolVar(&keepEmptyFlag, "keep-empty", false, "Leave emptied Unknown Album folders in place")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite files already at a destination path")
	cmd.Flags().BoolVar(&attachArtFlag, "attach-art", false, "Embed cover art into resolved files")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent provider lookups (default from config)")
	return cmd
}
