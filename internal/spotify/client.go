package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/franz/tune2spot/internal/match"
	"github.com/franz/tune2spot/internal/util"
)

const (
	// searchLimit caps how many candidates a single search returns.
	// Relevance drops off quickly; more results only add noise to the
	// decision engine.
	searchLimit = 10

	// requestsPerSecond paces outgoing API calls well under the
	// documented rate limits.
	requestsPerSecond = 8
)

// Client wraps the Web API with pacing, retry, and error
// classification. All methods classify failures as util.ErrAuth or
// util.ErrTransient where applicable, so callers can decide between
// aborting the run and retrying.
type Client struct {
	api     *spotifyapi.Client
	limiter *rate.Limiter
	retry   *util.RetryConfig
	cache   *SearchCache
}

func newClient(api *spotifyapi.Client) *Client {
	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retry:   util.DefaultRetryConfig(),
	}
}

// WithCache attaches a persistent search cache. Nil disables caching.
func (c *Client) WithCache(cache *SearchCache) *Client {
	c.cache = cache
	return c
}

// SearchTracks runs one catalog search and converts the results into
// decision-engine candidates. Results come back in the catalog's
// relevance order.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]match.Candidate, error) {
	if c.cache != nil {
		if candidates, ok := c.cache.Get(query); ok {
			util.DebugLog("Cache hit for %q", query)
			return candidates, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := util.RetryWithBackoff(ctx, c.retry, func() (*spotifyapi.SearchResult, error) {
		res, err := c.api.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(searchLimit))
		return res, classify(err)
	}, "search")
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	var candidates []match.Candidate
	if result.Tracks != nil {
		candidates = make([]match.Candidate, 0, len(result.Tracks.Tracks))
		for _, t := range result.Tracks.Tracks {
			candidates = append(candidates, toCandidate(t))
		}
	}

	if c.cache != nil {
		c.cache.Put(query, candidates)
	}
	return candidates, nil
}

func toCandidate(t spotifyapi.FullTrack) match.Candidate {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return match.Candidate{
		ID:         string(t.ID),
		Title:      t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMs: int(t.Duration),
		Popularity: int(t.Popularity),
	}
}

// classify maps a Web API error onto the sentinel taxonomy. 401/403 are
// credential problems and abort the run; 429 and 5xx are transient and
// retried; everything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			return fmt.Errorf("%w: %s (status %d)", util.ErrAuth, apiErr.Message, apiErr.Status)
		case apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500:
			return fmt.Errorf("%w: %s (status %d)", util.ErrTransient, apiErr.Message, apiErr.Status)
		case apiErr.Status == http.StatusNotFound:
			return fmt.Errorf("%w: %s", util.ErrNotFound, apiErr.Message)
		}
		return err
	}

	// Token endpoint rejections arrive as oauth2 errors, not API errors.
	msg := err.Error()
	if strings.Contains(msg, "invalid_client") ||
		strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "unauthorized") {
		return fmt.Errorf("%w: %v", util.ErrAuth, err)
	}
	return err
}
