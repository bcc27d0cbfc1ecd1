package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
	"tonearm/internal/fileutil"
	"tonearm/internal/library"
	"tonearm/internal/logging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		simulateFlag    bool
		resolutionsFlag bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove empty folders left behind in the library",
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
				index, err := library.Scan(cfg.Paths.LibraryDir)
				if err != nil {
					return err
				}

				removed, err := cleanEmptyFolders(index, simulateFlag, logger)
				if err != nil {
					return err
				}

				if resolutionsFlag && !simulateFlag {
					store, err := catalog.Open(cfg.Paths.CatalogPath)
					if err != nil {
						return err
					}
					defer store.Close()
					if err := store.ClearResolutions(context.Background()); err != nil {
						return err
					}
					logger.Info("resolution cache cleared")
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderCounters(
					[]string{"Folders removed"},
					[]int{removed},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&simulateFlag, "simulate", false, "Report actions without touching files")
	cmd.Flags().BoolVar(&resolutionsFlag, "resolutions", false, "Also clear the cached album resolutions")
	return cmd
}

// cleanEmptyFolders prunes every empty album folder, which in turn
// removes artist folders the prune emptied.
func cleanEmptyFolders(index *library.Index, simulate bool, logger *slog.Logger) (int, error) {
	root := index.Root()
	artists, err := os.ReadDir(root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, artist := range artists {
		if !artist.IsDir() {
			continue
		}
		artistDir := filepath.Join(root, artist.Name())
		albums, err := os.ReadDir(artistDir)
		if err != nil {
			return removed, err
		}
		for _, album := range albums {
			if !album.IsDir() {
				continue
			}
			albumDir := filepath.Join(artistDir, album.Name())
			empty, err := fileutil.DirIsEmpty(albumDir)
			if err != nil {
				return removed, err
			}
			if !empty {
				continue
			}
			removed++
			if simulate {
				logger.Info("simulate: would remove", logging.String("dir", albumDir))
				continue
			}
			if err := index.Prune(albumDir); err != nil {
				return removed, err
			}
			logger.Info("removed empty folder", logging.String("dir", albumDir))
		}
	}
	return removed, nil
}
