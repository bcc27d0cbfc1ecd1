package dbpedia

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

// coverQuery finds the cover property of an album resource whose label
// and artist both match, case-insensitively. DBpedia stores the cover
// as a bare file name on Wikimedia Commons or English Wikipedia.
const coverQuery = `SELECT ?cover WHERE {
  ?album rdf:type dbo:Album ;
         rdfs:label ?label ;
         dbo:artist ?artist ;
         dbp:cover ?cover .
  ?artist rdfs:label ?artistLabel .
  FILTER (lang(?label) = "en" && lcase(str(?label)) = %s)
  FILTER (lang(?artistLabel) = "en" && lcase(str(?artistLabel)) = %s)
} LIMIT 1`

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Client runs cover lookups against a DBpedia SPARQL endpoint.
type Client struct {
	endpoint   string
	limiter    *providers.RateLimiter
	httpClient *http.Client
}

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

// New creates a DBpedia client.
func New(endpoint string, requestsPerSecond float64, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("dbpedia endpoint required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := &Client{
		endpoint:   endpoint,
		limiter:    providers.NewRateLimiter(requestsPerSecond),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CoverFileName returns the album's cover file name, or empty when
// DBpedia has no matching album resource.
func (c *Client) CoverFileName(ctx context.Context, artist, album string) (string, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return "", errors.New("artist and album must not be empty")
	}

	query := fmt.Sprintf(coverQuery,
		sparqlString(strings.ToLower(album)),
		sparqlString(strings.ToLower(artist)))

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse dbpedia url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "application/sparql-results+json")
	endpoint.RawQuery = params.Encode()

	var payload sparqlResponse
	err = providers.WithRetry(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/sparql-results+json")

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("dbpedia returned %d (latency=%v)", resp.StatusCode, latency)
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("decode dbpedia response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	for _, binding := range payload.Results.Bindings {
		if cover, ok := binding["cover"]; ok && strings.TrimSpace(cover.Value) != "" {
			return strings.TrimSpace(cover.Value), nil
		}
	}
	return "", nil
}

// sparqlString quotes a literal for inline use in a SPARQL filter.
func sparqlString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}
