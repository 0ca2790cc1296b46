// Package opendota sources trivia content from the OpenDota public API
package opendota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.opendota.com/api"
	DefaultImageBaseURL = "https://cdn.cloudflare.steamstatic.com"
	requestTimeout      = 10 * time.Second
)

// Client calls the OpenDota REST endpoints used for trivia
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for baseURL allowing at most requestsPerMinute calls.
// A non-positive rate disables limiting.
func NewClient(baseURL string, requestsPerMinute int) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// PublicMatch is one entry of /publicMatches. Team fields stay raw so a
// malformed entry is skipped instead of failing the whole batch.
type PublicMatch struct {
	MatchID     int64           `json:"match_id"`
	RadiantWin  *bool           `json:"radiant_win"`
	Duration    *int            `json:"duration"`
	RadiantTeam json.RawMessage `json:"radiant_team"`
	DireTeam    json.RawMessage `json:"dire_team"`
}

// HeroStats returns the raw /heroStats document
func (c *Client) HeroStats(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/heroStats")
}

// PublicMatches returns the latest public matches
func (c *Client) PublicMatches(ctx context.Context) ([]PublicMatch, error) {
	body, err := c.get(ctx, "/publicMatches")
	if err != nil {
		return nil, err
	}
	var matches []PublicMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode public matches: %w", err)
	}
	return matches, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: failed to read body: %w", path, err)
	}
	return body, nil
}
