package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration values that would make a run misbehave.
// All findings are joined so the user sees every problem at once.
func (c *Config) Validate() error {
	var problems []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(strings.TrimSpace(c.Paths.SourceDir) != "", "paths.source_dir must be set")
	check(strings.TrimSpace(c.Paths.LibraryDir) != "", "paths.library_dir must be set")
	check(strings.TrimSpace(c.Paths.CatalogPath) != "", "paths.catalog_path must be set")

	check(c.MusicBrainz.BaseURL != "", "musicbrainz.base_url must be set")
	check(c.MusicBrainz.UserAgent != "", "musicbrainz.user_agent must be set")
	check(c.MusicBrainz.RequestsPerSecond > 0, "musicbrainz.requests_per_second must be positive")
	check(c.MusicBrainz.TimeoutSeconds > 0, "musicbrainz.timeout_seconds must be positive")

	check(c.LastFm.BaseURL != "", "lastfm.base_url must be set")
	check(c.LastFm.RequestsPerSecond > 0, "lastfm.requests_per_second must be positive")
	check(c.LastFm.TimeoutSeconds > 0, "lastfm.timeout_seconds must be positive")

	check(c.Wikipedia.BaseURL != "", "wikipedia.base_url must be set")
	check(c.Wikipedia.RequestsPerSecond > 0, "wikipedia.requests_per_second must be positive")
	check(c.Wikipedia.TimeoutSeconds > 0, "wikipedia.timeout_seconds must be positive")

	check(c.DBpedia.Endpoint != "", "dbpedia.endpoint must be set")
	check(c.DBpedia.RequestsPerSecond > 0, "dbpedia.requests_per_second must be positive")
	check(c.DBpedia.TimeoutSeconds > 0, "dbpedia.timeout_seconds must be positive")

	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }
	check(inUnit(c.Scoring.AcceptanceThreshold), "scoring.acceptance_threshold must be between 0 and 1")
	check(inUnit(c.Scoring.ArtistMatchThreshold), "scoring.artist_match_threshold must be between 0 and 1")
	check(c.Scoring.OfficialBonus >= 1, "scoring.official_bonus must be at least 1")
	check(c.Scoring.AlbumWeight > 0, "scoring.album_weight must be positive")
	check(c.Scoring.SingleWeight > 0, "scoring.single_weight must be positive")
	check(c.Scoring.OtherWeight > 0, "scoring.other_weight must be positive")
	check(c.Scoring.CompilationWeight > 0, "scoring.compilation_weight must be positive")
	check(c.Scoring.TieEpsilon >= 0, "scoring.tie_epsilon must not be negative")

	check(c.Workers.ProviderWorkers > 0, "workers.provider_workers must be positive")

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Join(problems...)
}
