// Package organize ingests loose audio files into the library tree.
// Each file is filed under Artist/Album/Title from its tags; anything
// without a readable album lands in the artist's Unknown Album folder
// for reconciliation to pick up later.
package organize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"tonearm/internal/fileutil"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/tags"
)

// Outcome is the terminal state of one ingested file.
type Outcome string

const (
	OutcomePlaced    Outcome = "placed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Result reports what happened to one source file.
type Result struct {
	Source  string
	Track   tags.Track
	Outcome Outcome
	Dest    string
	Err     error
}

// Summary aggregates a run's outcomes.
type Summary struct {
	Scanned    int
	Placed     int
	Duplicates int
	Failures   int
}

// Options tune an ingest run.
type Options struct {
	// Move removes source files after placement instead of copying.
	Move bool
	// Force places files even when the identity triple already exists,
	// overwriting the previous placement.
	Force bool
	// Simulate reports what would happen without touching disk.
	Simulate bool
}

// Organizer files source files into the library index's tree.
type Organizer struct {
	index  *library.Index
	logger *slog.Logger
	opts   Options
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organizer) {
		if logger != nil {
			o.logger = logging.WithComponent(logger, "organize")
		}
	}
}

// New creates an Organizer over the given index.
func New(index *library.Index, opts Options, organizerOpts ...Option) *Organizer {
	o := &Organizer{
		index:  index,
		logger: logging.NewNop(),
		opts:   opts,
	}
	for _, opt := range organizerOpts {
		opt(o)
	}
	return o
}

// Run ingests every supported audio file under sourceDir, depth-first
// in path order. Cancellation stops before the next file.
func (o *Organizer) Run(ctx context.Context, sourceDir string) (Summary, []Result, error) {
	var summary Summary
	var results []Result

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := tags.DetectFormat(path); !ok {
			return nil
		}

		summary.Scanned++
		result := o.ingest(path)
		results = append(results, result)
		switch result.Outcome {
		case OutcomePlaced:
			summary.Placed++
		case OutcomeDuplicate:
			summary.Duplicates++
		case OutcomeFailed:
			summary.Failures++
		}
		return nil
	})
	if err != nil {
		return summary, results, fmt.Errorf("scan source: %w", err)
	}
	return summary, results, nil
}

func (o *Organizer) ingest(path string) Result {
	result := Result{Source: path}

	track, readErr := tags.ReadTrack(path)
	result.Track = track
	if readErr != nil {
		// Unreadable tags degrade to sentinels; the file is still
		// filed so it is not lost.
		o.logger.Warn("tags unreadable, using sentinels",
			logging.String("path", path),
			logging.Error(readErr))
	}

	if track.HasUnknownAlbum() && !o.opts.Force {
		if resolved, ok := o.index.ResolvedPlacement(track.Artist, track.Title); ok {
			result.Outcome = OutcomeDuplicate
			o.logger.Info("already resolved, skipping",
				logging.String("artist", track.Artist),
				logging.String("title", track.Title),
				logging.String("album", resolved.Album))
			return result
		}
	}

	if o.index.Contains(track.Artist, track.Album, track.Title) && !o.opts.Force {
		result.Outcome = OutcomeDuplicate
		o.logger.Info("duplicate skipped",
			logging.String("artist", track.Artist),
			logging.String("album", track.Album),
			logging.String("title", track.Title))
		return result
	}

	result.Dest = o.index.PathFor(track.Artist, track.Album, track.Title, filepath.Ext(path))
	if o.opts.Simulate {
		result.Outcome = OutcomePlaced
		o.logger.Info("simulate: would place",
			logging.String("from", path),
			logging.String("to", result.Dest))
		return result
	}

	if err := fileutil.Place(path, result.Dest, o.opts.Move, o.opts.Force); err != nil {
		result.Outcome = OutcomeFailed
		if errors.Is(err, fileutil.ErrConflict) {
			result.Err = fmt.Errorf("destination occupied: %w", err)
		} else {
			result.Err = err
		}
		o.logger.Warn("placement failed",
			logging.String("from", path),
			logging.String("to", result.Dest),
			logging.Error(result.Err))
		return result
	}

	o.index.Remove(track.Artist, track.Album, track.Title)
	if err := o.index.Add(library.Entry{
		Artist: track.Artist,
		Album:  track.Album,
		Title:  track.Title,
		Path:   result.Dest,
	}); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	result.Outcome = OutcomePlaced
	o.logger.Info("placed",
		logging.String("artist", track.Artist),
		logging.String("album", track.Album),
		logging.String("title", track.Title),
		logging.String("path", result.Dest))
	return result
}
