// Package artwork locates album cover images by walking an ordered
// chain of sources and normalizing whatever it finds to JPEG.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"tonearm/internal/logging"
)

// ErrNoArtwork is returned when every stage came up empty.
var ErrNoArtwork = errors.New("no artwork found")

// maxDownloadBytes caps how much image data a single download may
// occupy. Covers past a few megabytes are either wrong or wasteful.
const maxDownloadBytes = 10 << 20

// Stage is one source in the fallback chain. It returns the URL of a
// candidate cover image, or empty when the source has nothing. Errors
// mean the source misbehaved; the chain moves on either way.
type Stage interface {
	Name() string
	CoverURL(ctx context.Context, artist, album, title string) (string, error)
}

// memoEntry caches the outcome of one (artist, album) resolution so a
// run never asks the chain twice for the same album.
type memoEntry struct {
	data []byte
	err  error
}

// Resolver walks stages in order, downloads the first hit, and hands
// back normalized JPEG bytes.
type Resolver struct {
	stages     []Stage
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the client used to download image bytes.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithLogger attaches a logger; stage failures are logged, not fatal.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logging.WithComponent(logger, "artwork")
		}
	}
}

// NewResolver builds a Resolver over the given stages. Stage order is
// the fallback order.
func NewResolver(stages []Stage, opts ...Option) *Resolver {
	r := &Resolver{
		stages:     stages,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
		memo:       make(map[string]memoEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds cover art for an album. Each (artist, album) pair is
// resolved at most once per Resolver lifetime; later calls replay the
// first outcome, including a miss.
func (r *Resolver) Resolve(ctx context.Context, artist, album, title string) ([]byte, error) {
	key := memoKey(artist, album)

	r.mu.Lock()
	if entry, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return entry.data, entry.err
	}
	r.mu.Unlock()

	data, err := r.resolve(ctx, artist, album, title)
	// Cancellation is not an answer; leave the memo empty so a later
	// run can try again.
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	r.mu.Lock()
	r.memo[key] = memoEntry{data: data, err: err}
	r.mu.Unlock()
	return data, err
}

func (r *Resolver) resolve(ctx context.Context, artist, album, title string) ([]byte, error) {
	for _, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url, err := stage.CoverURL(ctx, artist, album, title)
		if err != nil {
			r.logger.Warn("artwork stage failed",
				logging.String("stage", stage.Name()),
				logging.String("artist", artist),
				logging.String("album", album),
				logging.Error(err))
			continue
		}
		if url == "" {
			continue
		}

		data, err := r.download(ctx, url)
		if err != nil {
			r.logger.Warn("artwork download failed",
				logging.String("stage", stage.Name()),
				logging.String("url", url),
				logging.Error(err))
			continue
		}
		normalized, err := NormalizeJPEG(data)
		if err != nil {
			r.logger.Warn("artwork unusable",
				logging.String("stage", stage.Name()),
				logging.String("url", url),
				logging.Error(err))
			continue
		}
		r.logger.Debug("artwork resolved",
			logging.String("stage", stage.Name()),
			logging.String("artist", artist),
			logging.String("album", album),
			logging.Int("bytes", len(normalized)))
		return normalized, nil
	}
	return nil, ErrNoArtwork
}

func (r *Resolver) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}

func memoKey(artist, album string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(album))
}
