// Package reconcile moves tracks out of Unknown Album folders once
// their album can be resolved, without ever duplicating or orphaning a
// file. Running it twice is safe: the second pass finds nothing left
// to do, or reports duplicates instead of moving again.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"tonearm/internal/artwork"
	"tonearm/internal/fileutil"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/providers"
	"tonearm/internal/scoring"
	"tonearm/internal/tags"
)

// Outcome is the terminal state of one track's reconciliation.
type Outcome string

const (
	OutcomeResolved   Outcome = "resolved"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeMoveFailed Outcome = "move_failed"
)

// Summary aggregates a run's per-track outcomes.
type Summary struct {
	Processed    int
	Resolved     int
	Unresolved   int
	Duplicates   int
	MoveFailures int
	ArtAttached  int
	ArtFailures  int
}

// ArtOutcome reports what happened to a resolved track's cover art.
type ArtOutcome string

const (
	ArtSkipped  ArtOutcome = ""
	ArtPresent  ArtOutcome = "present"
	ArtAttached ArtOutcome = "attached"
	ArtFailed   ArtOutcome = "failed"
)

// TrackResult reports what happened to one track.
type TrackResult struct {
	Entry   library.Entry
	Outcome Outcome
	Album   string
	Art     ArtOutcome
	Err     error
}

// ResolutionCache remembers which album a track resolved to, so
// repeated titles skip the provider round trip. Implementations must
// be safe for concurrent use.
type ResolutionCache interface {
	GetResolution(artist, title string) (album string, ok bool)
	PutResolution(artist, title, album string) error
}

// memoryCache is the fallback cache scoped to one engine.
type memoryCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{m: make(map[string]string)}
}

func (c *memoryCache) GetResolution(artist, title string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	album, ok := c.m[artist+"|"+title]
	return album, ok
}

func (c *memoryCache) PutResolution(artist, title, album string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[artist+"|"+title] = album
	return nil
}

// Options tune a reconciliation run.
type Options struct {
	// Simulate reports what would happen without touching disk.
	Simulate bool
	// KeepEmpty leaves emptied Unknown Album folders in place.
	KeepEmpty bool
	// Overwrite allows replacing files already at a destination path.
	Overwrite bool
	// AttachArt embeds cover art into freshly placed files.
	AttachArt bool
	// Workers bounds concurrent provider resolution. Defaults to 4.
	Workers int
}

// Engine wires the resolver stack to the library index.
type Engine struct {
	resolvers []providers.Resolver
	scorer    *scoring.Scorer
	art       *artwork.Resolver
	index     *library.Index
	cache     ResolutionCache
	logger    *slog.Logger
	opts      Options

	// mutationMu serializes every index update and filesystem move so
	// concurrent resolutions cannot race placements.
	mutationMu sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithArtwork enables cover art attachment through the given resolver.
func WithArtwork(art *artwork.Resolver) EngineOption {
	return func(e *Engine) { e.art = art }
}

// WithCache substitutes a persistent resolution cache.
func WithCache(cache ResolutionCache) EngineOption {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logging.WithComponent(logger, "reconcile")
		}
	}
}

// NewEngine creates an Engine over the given index and resolver stack.
func NewEngine(index *library.Index, resolvers []providers.Resolver, scorer *scoring.Scorer, opts Options, engineOpts ...EngineOption) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	e := &Engine{
		resolvers: resolvers,
		scorer:    scorer,
		index:     index,
		cache:     newMemoryCache(),
		logger:    logging.NewNop(),
		opts:      opts,
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

// Run reconciles every Unknown Album track. Provider queries run
// concurrently; placements are serialized. Cancellation stops new
// tracks from starting but lets in-flight ones finish, so the tree is
// never left half-moved.
func (e *Engine) Run(ctx context.Context) (Summary, []TrackResult, error) {
	entries := e.index.UnknownAlbumEntries()
	results := make([]TrackResult, len(entries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.opts.Workers)
	for i, entry := range entries {
		if groupCtx.Err() != nil {
			break
		}
		i, entry := i, entry
		group.Go(func() error {
			results[i] = e.reconcileTrack(groupCtx, entry)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Summary{}, nil, err
	}

	var summary Summary
	completed := results[:0]
	for _, result := range results {
		if result.Outcome == "" {
			continue // never started before cancellation
		}
		completed = append(completed, result)
		summary.Processed++
		switch result.Outcome {
		case OutcomeResolved:
			summary.Resolved++
		case OutcomeUnresolved:
			summary.Unresolved++
		case OutcomeDuplicate:
			summary.Duplicates++
		case OutcomeMoveFailed:
			summary.MoveFailures++
		}
		switch result.Art {
		case ArtAttached:
			summary.ArtAttached++
		case ArtFailed:
			summary.ArtFailures++
		}
	}
	return summary, completed, ctx.Err()
}

func (e *Engine) reconcileTrack(ctx context.Context, entry library.Entry) TrackResult {
	result := TrackResult{Entry: entry}

	album, err := e.resolveAlbum(ctx, entry.Artist, entry.Title)
	if err != nil {
		result.Outcome = OutcomeUnresolved
		result.Err = err
		e.logger.Info("track unresolved",
			logging.String("artist", entry.Artist),
			logging.String("title", entry.Title),
			logging.Error(err))
		return result
	}
	result.Album = album

	e.mutationMu.Lock()
	defer e.mutationMu.Unlock()

	if e.index.Contains(entry.Artist, album, entry.Title) {
		result.Outcome = OutcomeDuplicate
		result.Err = WrapError(ErrDuplicateDetected, "place",
			entry.Artist+" / "+album+" / "+entry.Title, nil)
		e.logger.Info("duplicate placement skipped",
			logging.String("artist", entry.Artist),
			logging.String("album", album),
			logging.String("title", entry.Title))
		return result
	}

	destination := e.index.PathFor(entry.Artist, album, entry.Title, filepath.Ext(entry.Path))
	if e.opts.Simulate {
		result.Outcome = OutcomeResolved
		e.logger.Info("simulate: would move",
			logging.String("from", entry.Path),
			logging.String("to", destination))
		return result
	}

	if err := e.place(entry, album, destination); err != nil {
		result.Outcome = OutcomeMoveFailed
		result.Err = err
		e.logger.Warn("move failed",
			logging.String("from", entry.Path),
			logging.String("to", destination),
			logging.Error(err))
		return result
	}
	result.Outcome = OutcomeResolved
	e.logger.Info("track resolved",
		logging.String("artist", entry.Artist),
		logging.String("album", album),
		logging.String("title", entry.Title),
		logging.String("path", destination))

	if e.opts.AttachArt && e.art != nil {
		result.Art, result.Err = e.attachArt(ctx, entry, album, destination)
	}
	return result
}

// place retags and moves one file, updating the index to match. The
// caller holds the mutation lock.
func (e *Engine) place(entry library.Entry, album, destination string) error {
	if _, err := os.Stat(destination); err == nil {
		if !e.opts.Overwrite {
			return WrapError(ErrFilesystemConflict, "move", destination, nil)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return WrapError(ErrIO, "stat destination", destination, err)
	}

	if err := tags.SetAlbum(entry.Path, album); err != nil {
		return WrapError(ErrIO, "retag", entry.Path, err)
	}
	if err := fileutil.Place(entry.Path, destination, true, e.opts.Overwrite); err != nil {
		if errors.Is(err, fileutil.ErrConflict) {
			return WrapError(ErrFilesystemConflict, "move", destination, err)
		}
		return WrapError(ErrIO, "move", destination, err)
	}

	e.index.Remove(entry.Artist, entry.Album, entry.Title)
	if err := e.index.Add(library.Entry{
		Artist: entry.Artist,
		Album:  album,
		Title:  entry.Title,
		Path:   destination,
	}); err != nil {
		return WrapError(ErrDuplicateDetected, "index", destination, err)
	}

	if !e.opts.KeepEmpty {
		if err := e.index.Prune(filepath.Dir(entry.Path)); err != nil {
			e.logger.Warn("prune failed",
				logging.String("dir", filepath.Dir(entry.Path)),
				logging.Error(err))
		}
	}
	return nil
}

// attachArt embeds cover art when the file has none.
func (e *Engine) attachArt(ctx context.Context, entry library.Entry, album, path string) (ArtOutcome, error) {
	hasArt, err := tags.HasArt(path)
	if err != nil {
		return ArtFailed, WrapError(ErrIO, "check art", path, err)
	}
	if hasArt {
		return ArtPresent, nil
	}

	data, err := e.art.Resolve(ctx, entry.Artist, album, entry.Title)
	if err != nil {
		if errors.Is(err, artwork.ErrNoArtwork) {
			e.logger.Info("no artwork found",
				logging.String("artist", entry.Artist),
				logging.String("album", album))
			return ArtFailed, err
		}
		return ArtFailed, WrapError(ErrProviderUnavailable, "artwork", album, err)
	}
	if err := tags.AttachArt(path, data); err != nil {
		return ArtFailed, WrapError(ErrIO, "attach art", path, err)
	}
	e.logger.Info("artwork attached",
		logging.String("artist", entry.Artist),
		logging.String("album", album),
		logging.String("path", path))
	return ArtAttached, nil
}

// resolveAlbum queries every provider in order and scores the combined
// candidate pool. A cached resolution short-circuits the round trip.
func (e *Engine) resolveAlbum(ctx context.Context, artist, title string) (string, error) {
	if album, ok := e.cache.GetResolution(artist, title); ok {
		return album, nil
	}

	var candidates []providers.AlbumCandidate
	var failures int
	for _, resolver := range e.resolvers {
		found, err := resolver.ResolveAlbum(ctx, artist, title)
		if err != nil {
			failures++
			e.logger.Warn("provider query failed",
				logging.String("provider", string(resolver.Name())),
				logging.String("artist", artist),
				logging.String("title", title),
				logging.Error(err))
			continue
		}
		candidates = append(candidates, found...)
	}
	if len(candidates) == 0 {
		if failures > 0 && failures == len(e.resolvers) {
			return "", WrapError(ErrProviderUnavailable, "resolve", artist+" - "+title, nil)
		}
		return "", WrapError(ErrNoConfidentMatch, "resolve", artist+" - "+title, nil)
	}

	best, ok := e.scorer.Best(artist, candidates)
	if !ok {
		return "", WrapError(ErrNoConfidentMatch, "resolve", artist+" - "+title, nil)
	}
	if err := e.cache.PutResolution(artist, title, best.Candidate.Album); err != nil {
		e.logger.Warn("resolution cache write failed", logging.Error(err))
	}
	return best.Candidate.Album, nil
}
