package musicbrainz

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

// minRecordingScore drops low-relevance search hits before any release
// of theirs can become a candidate.
const minRecordingScore = 50

// artistCredit is one entry of a MusicBrainz artist-credit list.
type artistCredit struct {
	Name string `json:"name"`
}

// releaseGroup carries the release classification.
type releaseGroup struct {
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}

// release is a single release attached to a recording.
type release struct {
	Title        string         `json:"title"`
	Status       string         `json:"status"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	ReleaseGroup releaseGroup   `json:"release-group"`
}

// recording is one recording search hit with its relevance score.
type recording struct {
	Score        int            `json:"score"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
}

// searchResponse models the recording search payload.
type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

// Client queries the MusicBrainz recording search.
type Client struct {
	baseURL    string
	userAgent  string
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

// New creates a MusicBrainz client. MusicBrainz rejects requests
// without a descriptive user agent, so one is required.
func New(baseURL, userAgent string, requestsPerSecond float64, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
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
	return providers.SourceMusicBrainz
}

// ResolveAlbum searches recordings matching the artist and title and
// returns one candidate per release of every confident recording hit.
func (c *Client) ResolveAlbum(ctx context.Context, artist, title string) ([]providers.AlbumCandidate, error) {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	if artist == "" || title == "" {
		return nil, errors.New("artist and title must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/recording")
	if err != nil {
		return nil, fmt.Errorf("parse musicbrainz url: %w", err)
	}
	params := url.Values{}
	params.Set("query", fmt.Sprintf("artist:%s AND recording:%s", luceneQuote(artist), luceneQuote(title)))
	params.Set("fmt", "json")
	params.Set("limit", "10")
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	err = providers.WithRetry(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.get(ctx, endpoint.String(), &payload)
	})
	if err != nil {
		return nil, err
	}

	var candidates []providers.AlbumCandidate
	for _, rec := range payload.Recordings {
		if rec.Score < minRecordingScore {
			continue
		}
		confidence := float64(rec.Score) / 100
		if confidence > 1 {
			confidence = 1
		}
		for _, rel := range rec.Releases {
			if strings.TrimSpace(rel.Title) == "" {
				continue
			}
			candidates = append(candidates, providers.AlbumCandidate{
				Album:      rel.Title,
				Artist:     creditName(rel.ArtistCredit, rec.ArtistCredit),
				Source:     providers.SourceMusicBrainz,
				Confidence: confidence,
				Official:   strings.EqualFold(rel.Status, "Official"),
				Type:       classify(rel.ReleaseGroup),
			})
		}
	}
	return candidates, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return nil
}

// classify folds the release group typing into a single release type.
// A compilation secondary type overrides the primary type: soundtrack
// and hits collections report primary-type Album but should rank as
// compilations.
func classify(group releaseGroup) providers.ReleaseType {
	for _, secondary := range group.SecondaryTypes {
		if strings.EqualFold(secondary, "Compilation") {
			return providers.ReleaseCompilation
		}
	}
	return providers.ParseReleaseType(group.PrimaryType)
}

// creditName returns the first credited artist, preferring the
// release's own credit over the recording's.
func creditName(release, recording []artistCredit) string {
	for _, credits := range [][]artistCredit{release, recording} {
		for _, credit := range credits {
			if name := strings.TrimSpace(credit.Name); name != "" {
				return name
			}
		}
	}
	return ""
}

// luceneQuote wraps a value for a Lucene query, escaping embedded
// quotes and backslashes.
func luceneQuote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}
