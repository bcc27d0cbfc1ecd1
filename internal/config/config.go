package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir   string `toml:"source_dir"`
	LibraryDir  string `toml:"library_dir"`
	LogDir      string `toml:"log_dir"`
	CatalogPath string `toml:"catalog_path"`
}

// MusicBrainz contains configuration for the MusicBrainz recording search.
type MusicBrainz struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// LastFm contains configuration for the Last.fm API.
type LastFm struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Wikipedia contains configuration for Wikipedia article and image lookup.
type Wikipedia struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// DBpedia contains configuration for the DBpedia SPARQL endpoint.
type DBpedia struct {
	Endpoint          string  `toml:"endpoint"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Scoring contains the policy values the candidate scorer is calibrated with.
// The defaults preserve the intended ordering: official releases beat
// unofficial ones, studio albums beat singles, and compilations rank last.
type Scoring struct {
	AcceptanceThreshold  float64 `toml:"acceptance_threshold"`
	ArtistMatchThreshold float64 `toml:"artist_match_threshold"`
	OfficialBonus        float64 `toml:"official_bonus"`
	AlbumWeight          float64 `toml:"album_weight"`
	SingleWeight         float64 `toml:"single_weight"`
	OtherWeight          float64 `toml:"other_weight"`
	CompilationWeight    float64 `toml:"compilation_weight"`
	TieEpsilon           float64 `toml:"tie_epsilon"`
}

// Library contains placement policy for the destination tree.
type Library struct {
	OverwriteExisting bool `toml:"overwrite_existing"`
	KeepEmptyFolders  bool `toml:"keep_empty_folders"`
}

// Workers contains concurrency limits.
type Workers struct {
	ProviderWorkers int `toml:"provider_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	LastFm      LastFm      `toml:"lastfm"`
	Wikipedia   Wikipedia   `toml:"wikipedia"`
	DBpedia     DBpedia     `toml:"dbpedia"`
	Scoring     Scoring     `toml:"scoring"`
	Library     Library     `toml:"library"`
	Workers     Workers     `toml:"workers"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the expected config file location.
func DefaultConfigPath() string {
	return "~/.config/tonearm/config.toml"
}

// Load reads the config file at path, applies defaults for unset values, and
// validates the result. A missing file yields fs.ErrNotExist.
func Load(path string) (*Config, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", resolved, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but substitutes defaults when the file is
// absent.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		def := Default()
		if err := def.normalize(); err != nil {
			return nil, err
		}
		return &def, nil
	}
	return nil, err
}

// WriteSample writes the embedded sample config to path, refusing to clobber
// an existing file.
func WriteSample(path string) error {
	resolved, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file already exists: %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(resolved, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the run needs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LibraryDir, c.Paths.LogDir, filepath.Dir(c.Paths.CatalogPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path must not be empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Clean(path), nil
}

func (c *Config) normalize() error {
	if c.LastFm.APIKey == "" {
		c.LastFm.APIKey = os.Getenv("LASTFM_API_KEY")
	}
	fields := []*string{
		&c.Paths.SourceDir,
		&c.Paths.LibraryDir,
		&c.Paths.LogDir,
		&c.Paths.CatalogPath,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}
