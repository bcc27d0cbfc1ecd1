package config

const (
	defaultSourceDir   = "~/Music_to_extract"
	defaultLibraryDir  = "~/Music/Library"
	defaultLogDir      = "~/.local/share/tonearm/logs"
	defaultCatalogPath = "~/.local/share/tonearm/catalog.db"

	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultUserAgent          = "tonearm/1.0 (https://github.com/tonearm/tonearm)"

	// Public read key; the real deployment overrides it via config or
	// the LASTFM_API_KEY environment variable.
	defaultLastFmBaseURL = "https://ws.audioscrobbler.com/2.0"

	defaultWikipediaBaseURL = "https://en.wikipedia.org/w/api.php"
	defaultDBpediaEndpoint  = "https://dbpedia.org/sparql"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:   defaultSourceDir,
			LibraryDir:  defaultLibraryDir,
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:           defaultMusicBrainzBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: 1,
			TimeoutSeconds:    10,
		},
		LastFm: LastFm{
			BaseURL:           defaultLastFmBaseURL,
			RequestsPerSecond: 4,
			TimeoutSeconds:    10,
		},
		Wikipedia: Wikipedia{
			BaseURL:           defaultWikipediaBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: 4,
			TimeoutSeconds:    15,
		},
		DBpedia: DBpedia{
			Endpoint:          defaultDBpediaEndpoint,
			RequestsPerSecond: 2,
			TimeoutSeconds:    20,
		},
		Scoring: Scoring{
			AcceptanceThreshold:  0.5,
			ArtistMatchThreshold: 0.85,
			OfficialBonus:        1.3,
			AlbumWeight:          1.0,
			SingleWeight:         0.8,
			OtherWeight:          0.8,
			CompilationWeight:    0.5,
			TieEpsilon:           0.05,
		},
		Library: Library{},
		Workers: Workers{
			ProviderWorkers: 4,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
