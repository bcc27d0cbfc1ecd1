package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tonearm/internal/artwork"
	"tonearm/internal/catalog"
	"tonearm/internal/config"
	"tonearm/internal/logging"
	"tonearm/internal/providers"
	"tonearm/internal/providers/dbpedia"
	"tonearm/internal/providers/lastfm"
	"tonearm/internal/providers/musicbrainz"
	"tonearm/internal/providers/wikipedia"
	"tonearm/internal/scoring"
)

// buildResolvers assembles the album resolution stack in query order:
// MusicBrainz first, Last.fm as the fallback when an API key is
// configured.
func buildResolvers(cfg *config.Config, logger *slog.Logger) ([]providers.Resolver, error) {
	mb, err := musicbrainz.New(
		cfg.MusicBrainz.BaseURL,
		cfg.MusicBrainz.UserAgent,
		cfg.MusicBrainz.RequestsPerSecond,
		time.Duration(cfg.MusicBrainz.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	resolvers := []providers.Resolver{mb}

	if cfg.LastFm.APIKey != "" {
		lf, err := newLastFm(cfg)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, lf)
	} else {
		logger.Debug("lastfm api key not set, skipping lastfm resolution")
	}
	return resolvers, nil
}

// buildArtResolver assembles the cover art chain: Last.fm, then
// Wikipedia, then DBpedia.
func buildArtResolver(cfg *config.Config, logger *slog.Logger) (*artwork.Resolver, error) {
	wiki, err := wikipedia.New(
		cfg.Wikipedia.BaseURL,
		cfg.Wikipedia.UserAgent,
		cfg.Wikipedia.RequestsPerSecond,
		time.Duration(cfg.Wikipedia.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	db, err := dbpedia.New(
		cfg.DBpedia.Endpoint,
		cfg.DBpedia.RequestsPerSecond,
		time.Duration(cfg.DBpedia.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}

	var stages []artwork.Stage
	if cfg.LastFm.APIKey != "" {
		lf, err := newLastFm(cfg)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &artwork.LastFmStage{Client: lf})
	}
	stages = append(stages,
		&artwork.WikipediaStage{Client: wiki},
		&artwork.DBpediaStage{Client: db, Resolver: wiki},
	)

	return artwork.NewResolver(stages,
		artwork.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		artwork.WithLogger(logger),
	), nil
}

func newLastFm(cfg *config.Config) (*lastfm.Client, error) {
	return lastfm.New(
		cfg.LastFm.APIKey,
		cfg.LastFm.BaseURL,
		cfg.LastFm.RequestsPerSecond,
		time.Duration(cfg.LastFm.TimeoutSeconds)*time.Second,
	)
}

func scorerFromConfig(cfg *config.Config) *scoring.Scorer {
	return scoring.New(cfg.Scoring)
}

// recordRun appends the run to the catalog. History is best-effort:
// a catalog failure is logged, not fatal, because the library work is
// already done.
func recordRun(logger *slog.Logger, catalogPath string, run catalog.Run) {
	store, err := catalog.Open(catalogPath)
	if err != nil {
		logger.Warn("catalog unavailable, run not recorded", logging.Error(err))
		return
	}
	defer store.Close()
	// Background context: the run is already complete, and a pending
	// cancellation must not lose its history entry.
	if err := store.RecordRun(context.Background(), run); err != nil {
		logger.Warn("record run failed", logging.Error(err))
	}
}
