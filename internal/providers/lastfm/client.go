package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tonearm/internal/providers"
)

// fallbackConfidence is the confidence assigned to a Last.fm album
// attribution. Last.fm reports a single best album with no relevance
// score, so every hit carries the same moderate belief.
const fallbackConfidence = 0.7

// errNotFound marks the API's "no such track/album" answer, which
// arrives as an error payload inside a 200 response.
var errNotFound = errors.New("lastfm: not found")

// image is one rendition in a Last.fm image list, largest last.
type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// album is the album block shared by track.getInfo and album.getInfo.
type album struct {
	Title  string  `json:"title"`
	Name   string  `json:"name"`
	Artist string  `json:"artist"`
	Images []image `json:"image"`
}

type trackInfoResponse struct {
	Track struct {
		Album *album `json:"album"`
	} `json:"track"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type albumInfoResponse struct {
	Album   *album `json:"album"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Client talks to the Last.fm web API.
type Client struct {
	apiKey     string
	baseURL    string
	limiter    *providers.RateLimiter
	httpClient *http.Client
}

var _ providers.Resolver = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Last.fm client.
func New(apiKey, baseURL string, requestsPerSecond float64, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("lastfm api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("lastfm base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    providers.NewRateLimiter(requestsPerSecond),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name reports the provider identity.
func (c *Client) Name() providers.Source {
	return providers.SourceLastFm
}

// ResolveAlbum asks track.getInfo which album a track belongs to.
// Last.fm names at most one album, so the result has zero or one
// candidate.
func (c *Client) ResolveAlbum(ctx context.Context, artist, title string) ([]providers.AlbumCandidate, error) {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	if artist == "" || title == "" {
		return nil, errors.New("artist and title must not be empty")
	}

	var payload trackInfoResponse
	err := c.call(ctx, url.Values{
		"method": {"track.getInfo"},
		"artist": {artist},
		"track":  {title},
	}, &payload)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	info := payload.Track.Album
	if info == nil {
		return nil, nil
	}
	name := strings.TrimSpace(info.Title)
	if name == "" {
		name = strings.TrimSpace(info.Name)
	}
	if name == "" {
		return nil, nil
	}
	credited := strings.TrimSpace(info.Artist)
	if credited == "" {
		credited = artist
	}
	return []providers.AlbumCandidate{{
		Album:      name,
		Artist:     credited,
		Source:     providers.SourceLastFm,
		Confidence: fallbackConfidence,
		Type:       providers.ReleaseAlbum,
	}}, nil
}

// AlbumImage returns the cover image URL for an album, or empty when
// Last.fm has none.
func (c *Client) AlbumImage(ctx context.Context, artist, albumName string) (string, error) {
	var payload albumInfoResponse
	err := c.call(ctx, url.Values{
		"method": {"album.getinfo"},
		"artist": {strings.TrimSpace(artist)},
		"album":  {strings.TrimSpace(albumName)},
	}, &payload)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if payload.Album == nil {
		return "", nil
	}
	return largestImage(payload.Album.Images), nil
}

// TrackImage returns the album image attached to a track lookup, used
// when the resolved album itself has no art entry.
func (c *Client) TrackImage(ctx context.Context, artist, title string) (string, error) {
	var payload trackInfoResponse
	err := c.call(ctx, url.Values{
		"method": {"track.getInfo"},
		"artist": {strings.TrimSpace(artist)},
		"track":  {strings.TrimSpace(title)},
	}, &payload)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if payload.Track.Album == nil {
		return "", nil
	}
	return largestImage(payload.Track.Album.Images), nil
}

func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return fmt.Errorf("parse lastfm url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	// A definitive "not found" answer should not burn the retry.
	var apiErr error
	err = providers.WithRetry(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("lastfm returned %d (latency=%v)", resp.StatusCode, latency)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode lastfm response: %w", err)
		}
		apiErr = checkAPIError(out)
		return nil
	})
	if err != nil {
		return err
	}
	return apiErr
}

// checkAPIError surfaces the in-band error payload Last.fm returns
// with HTTP 200. Error code 6 means the entity does not exist.
func checkAPIError(out any) error {
	var code int
	var message string
	switch payload := out.(type) {
	case *trackInfoResponse:
		code, message = payload.Error, payload.Message
	case *albumInfoResponse:
		code, message = payload.Error, payload.Message
	}
	if code == 0 {
		return nil
	}
	if code == 6 {
		return errNotFound
	}
	return fmt.Errorf("lastfm error %d: %s", code, message)
}

// largestImage picks the biggest usable rendition. Last.fm lists
// sizes small to mega; later entries win, empty URLs are skipped.
func largestImage(images []image) string {
	best := ""
	for _, img := range images {
		if strings.TrimSpace(img.URL) != "" {
			best = img.URL
		}
	}
	return best
}
