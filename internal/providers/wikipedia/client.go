package wikipedia

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
	"tonearm/internal/textutil"
)

// skipSuffixes are image formats that are never album covers.
var skipSuffixes = []string{".svg", ".gif", ".tif", ".tiff"}

// skipKeywords mark maintenance and branding images that litter
// article image lists.
var skipKeywords = []string{"logo", "icon", "wiki", "commons", "question", "edit", "padlock", "stub"}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type imagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Images []struct {
				Title string `json:"title"`
			} `json:"images"`
		} `json:"pages"`
	} `json:"query"`
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Client looks up album cover images through the MediaWiki API.
type Client struct {
	baseURL    string
	userAgent  string
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

// New creates a Wikipedia client.
func New(baseURL, userAgent string, requestsPerSecond float64, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("wikipedia base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(userAgent),
		limiter:    providers.NewRateLimiter(requestsPerSecond),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindCoverImage searches for the album's article, scores the images
// on the best-matching page, and returns the URL of the likeliest
// cover. Empty result means Wikipedia has nothing usable.
func (c *Client) FindCoverImage(ctx context.Context, artist, album string) (string, error) {
	title, err := c.searchArticle(ctx, fmt.Sprintf("%s %s album", artist, album))
	if err != nil {
		return "", err
	}
	if title == "" {
		return "", nil
	}

	images, err := c.articleImages(ctx, title)
	if err != nil {
		return "", err
	}
	best := pickCoverImage(images, album)
	if best == "" {
		return "", nil
	}
	return c.ImageURL(ctx, best)
}

// ImageURL resolves a File: page name to its direct media URL.
func (c *Client) ImageURL(ctx context.Context, fileName string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", nil
	}
	if !strings.HasPrefix(fileName, "File:") {
		fileName = "File:" + fileName
	}

	var payload imageInfoResponse
	err := c.call(ctx, url.Values{
		"action": {"query"},
		"titles": {fileName},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
	}, &payload)
	if err != nil {
		return "", err
	}
	for _, page := range payload.Query.Pages {
		for _, info := range page.ImageInfo {
			if info.URL != "" {
				return info.URL, nil
			}
		}
	}
	return "", nil
}

func (c *Client) searchArticle(ctx context.Context, query string) (string, error) {
	var payload searchResponse
	err := c.call(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"3"},
	}, &payload)
	if err != nil {
		return "", err
	}
	if len(payload.Query.Search) == 0 {
		return "", nil
	}
	return payload.Query.Search[0].Title, nil
}

func (c *Client) articleImages(ctx context.Context, title string) ([]string, error) {
	var payload imagesResponse
	err := c.call(ctx, url.Values{
		"action":  {"query"},
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {"50"},
	}, &payload)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, page := range payload.Query.Pages {
		for _, img := range page.Images {
			names = append(names, img.Title)
		}
	}
	return names, nil
}

func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse wikipedia url: %w", err)
	}
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	return providers.WithRetry(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("wikipedia returned %d (latency=%v)", resp.StatusCode, latency)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode wikipedia response: %w", err)
		}
		return nil
	})
}

// pickCoverImage scores candidate file names and returns the best one,
// or empty when nothing plausibly depicts a cover. Album title tokens
// weigh heaviest, then the words "cover" and "album"; junk formats and
// site chrome are excluded outright.
func pickCoverImage(names []string, album string) string {
	albumTokens := strings.Fields(textutil.NormalizeComparable(album))

	best := ""
	bestScore := 0
	for _, name := range names {
		lower := strings.ToLower(name)
		if hasAnySuffix(lower, skipSuffixes) || containsAny(lower, skipKeywords) {
			continue
		}

		score := 1
		normalized := textutil.NormalizeComparable(name)
		for _, token := range albumTokens {
			if strings.Contains(normalized, token) {
				score += 3
			}
		}
		if strings.Contains(lower, "cover") {
			score += 2
		}
		if strings.Contains(lower, "album") {
			score += 1
		}

		if score > bestScore {
			best, bestScore = name, score
		}
	}
	return best
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
