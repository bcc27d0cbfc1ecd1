package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tonearm/internal/artwork"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/tags"
)

// coverFileName is the artwork file written into album folders by
// art --extract.
const coverFileName = "cover.jpg"

// artCounters aggregates one art pass.
type artCounters struct {
	Missing int
	Written int
	Failed  int
}

func newArtCommand(ctx *commandContext) *cobra.Command {
	var simulateFlag bool
	var extractFlag bool

	cmd := &cobra.Command{
		Use:   "art",
		Short: "Embed cover art into library tracks that lack it",
		Long: `Walks every resolved track in the library and embeds cover art
into files that have none, trying Last.fm, then Wikipedia, then DBpedia
for each album. With --extract, the image is saved as cover.jpg in the
album folder instead of embedded. Tracks still in Unknown Album folders
are skipped.`,
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
				art, err := buildArtResolver(cfg, logger)
				if err != nil {
					return err
				}

				var counters artCounters
				writtenHeader := "Attached"
				if extractFlag {
					writtenHeader = "Saved"
					counters = extractCovers(runCtx, index, art, simulateFlag, logger)
				} else {
					counters = embedCovers(runCtx, index, art, simulateFlag, logger)
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderCounters(
					[]string{"Missing art", writtenHeader, "Failures"},
					[]int{counters.Missing, counters.Written, counters.Failed},
				))
				return runCtx.Err()
			})
		},
	}

	cmd.Flags().BoolVar(&simulateFlag, "simulate", false, "Report actions without touching files")
	cmd.Flags().BoolVar(&extractFlag, "extract", false, "Save covers as cover.jpg in album folders instead of embedding")
	return cmd
}

// embedCovers attaches cover art to every resolved track that has none
// embedded.
func embedCovers(ctx context.Context, index *library.Index, art *artwork.Resolver, simulate bool, logger *slog.Logger) artCounters {
	var c artCounters
	for _, entry := range index.Entries() {
		if ctx.Err() != nil {
			break
		}
		if entry.Album == tags.UnknownAlbum {
			continue
		}
		hasArt, err := tags.HasArt(entry.Path)
		if err != nil {
			logger.Warn("art check failed",
				logging.String("path", entry.Path),
				logging.Error(err))
			c.Failed++
			continue
		}
		if hasArt {
			continue
		}
		c.Missing++
		if simulate {
			logger.Info("simulate: would attach art",
				logging.String("artist", entry.Artist),
				logging.String("album", entry.Album),
				logging.String("path", entry.Path))
			continue
		}

		data, err := art.Resolve(ctx, entry.Artist, entry.Album, entry.Title)
		if err != nil {
			if !errors.Is(err, artwork.ErrNoArtwork) {
				logger.Warn("artwork resolution failed",
					logging.String("album", entry.Album),
					logging.Error(err))
			}
			c.Failed++
			continue
		}
		if err := tags.AttachArt(entry.Path, data); err != nil {
			logger.Warn("attach failed",
				logging.String("path", entry.Path),
				logging.Error(err))
			c.Failed++
			continue
		}
		c.Written++
		logger.Info("artwork attached",
			logging.String("artist", entry.Artist),
			logging.String("album", entry.Album),
			logging.String("path", entry.Path))
	}
	return c
}

// extractCovers saves one cover.jpg per resolved album folder that
// lacks one.
func extractCovers(ctx context.Context, index *library.Index, art *artwork.Resolver, simulate bool, logger *slog.Logger) artCounters {
	var c artCounters
	seenDirs := make(map[string]bool)
	for _, entry := range index.Entries() {
		if ctx.Err() != nil {
			break
		}
		if entry.Album == tags.UnknownAlbum {
			continue
		}
		dir := filepath.Dir(entry.Path)
		if seenDirs[dir] {
			continue
		}
		seenDirs[dir] = true

		coverPath := filepath.Join(dir, coverFileName)
		if _, err := os.Stat(coverPath); err == nil {
			continue
		}
		c.Missing++
		if simulate {
			logger.Info("simulate: would save cover",
				logging.String("album", entry.Album),
				logging.String("path", coverPath))
			continue
		}

		data, err := art.Resolve(ctx, entry.Artist, entry.Album, entry.Title)
		if err != nil {
			if !errors.Is(err, artwork.ErrNoArtwork) {
				logger.Warn("artwork resolution failed",
					logging.String("album", entry.Album),
					logging.Error(err))
			}
			c.Failed++
			continue
		}
		if err := os.WriteFile(coverPath, data, 0o644); err != nil {
			logger.Warn("cover write failed",
				logging.String("path", coverPath),
				logging.Error(err))
			c.Failed++
			continue
		}
		c.Written++
		logger.Info("cover saved",
			logging.String("album", entry.Album),
			logging.String("path", coverPath))
	}
	return c
}
