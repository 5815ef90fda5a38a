// Package athleticnet polls the results-aggregation site's athlete-bio API.
// One bio fetch serves both roles the assembler needs: recent results since
// a cutoff, and the athlete's full history for best calculations.
package athleticnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/prairielabs/trackwatch/internal/adapters/source"
	"github.com/prairielabs/trackwatch/internal/domain/model"
	"github.com/prairielabs/trackwatch/pkg/logger"
)

// Default client configuration constants.
const (
	defaultBaseURL      = "https://www.athletic.net/api/v1"
	defaultTimeout      = 15 * time.Second
	defaultMaxRetries   = 6
	defaultAthletePause = 250 * time.Millisecond
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithMaxRetries sets how many times a failed bio fetch is retried with
// exponential backoff before the athlete is skipped.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = uint64(n)
		}
	}
}

// WithAthletePause sets the delay between athlete fetches, to stay under the
// site's rate limits.
func WithAthletePause(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pause = d
		}
	}
}

// WithSeasonFilter restricts RecentResults to one season id.
func WithSeasonFilter(seasonID int) Option {
	return func(c *Client) {
		c.seasonID = seasonID
	}
}

// Client fetches athlete bios and maps them to raw results.
type Client struct {
	baseURL    string
	httpClient *http.Client
	roster     []source.Athlete
	sport      string // "xc" or "tf"
	seasonID   int    // 0 = all seasons
	maxRetries uint64
	pause      time.Duration
	logger     logger.Logger

	mu    sync.Mutex
	cache map[string]*bioResponse // one bio fetch per athlete per run
}

// NewClient creates a client for one roster and sport.
func NewClient(roster []source.Athlete, sport string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		roster:     roster,
		sport:      sport,
		maxRetries: defaultMaxRetries,
		pause:      defaultAthletePause,
		logger:     logger.Get().Named("athleticnet"),
		cache:      make(map[string]*bioResponse),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecentResults fetches each roster athlete's bio and returns the results on
// or after the cutoff date. A persistently failing athlete is logged and
// skipped; the rest of the roster still goes through.
func (c *Client) RecentResults(ctx context.Context, cutoff time.Time) ([]model.RawResult, error) {
	var out []model.RawResult
	for i, athlete := range c.roster {
		if i > 0 && c.pause > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(c.pause):
			}
		}

		bio, err := c.bio(ctx, athlete.ID)
		if err != nil {
			c.logger.Warn(ctx, "skipping athlete after repeated fetch failures",
				logger.String("athleteID", athlete.ID),
				logger.String("athlete", athlete.Name),
				logger.Error(err),
			)
			continue
		}
		for _, raw := range mapBio(bio, athlete, c.sport) {
			if raw.MeetDate.Before(cutoff) {
				continue
			}
			if c.seasonID != 0 && raw.SeasonID != c.seasonID {
				continue
			}
			out = append(out, raw)
		}
	}
	return out, nil
}

// History returns an athlete's full result list across all seasons. Bios are
// cached for the run, so the assembler's history lookups do not refetch.
func (c *Client) History(ctx context.Context, athleteID string) ([]model.RawResult, error) {
	athlete := source.Athlete{ID: athleteID}
	for _, a := range c.roster {
		if a.ID == athleteID {
			athlete = a
			break
		}
	}
	bio, err := c.bio(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return mapBio(bio, athlete, c.sport), nil
}

// bio fetches (or returns the cached) athlete-bio payload, retrying
// transient failures with exponential backoff.
func (c *Client) bio(ctx context.Context, athleteID string) (*bioResponse, error) {
	c.mu.Lock()
	if cached, ok := c.cache[athleteID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var resp *bioResponse
	operation := func() error {
		var err error
		resp, err = c.fetchBio(ctx, athleteID)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[athleteID] = resp
	c.mu.Unlock()
	return resp, nil
}

func (c *Client) fetchBio(ctx context.Context, athleteID string) (*bioResponse, error) {
	sportCode := "tf"
	if c.sport == "xc" {
		sportCode = "xc"
	}
	q := url.Values{
		"athleteId": {athleteID},
		"sport":     {sportCode},
		"level":     {"0"},
	}
	endpoint := c.baseURL + "/AthleteBio/GetAthleteBioData?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("athlete bio %s: unexpected status %d: %s",
			athleteID, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var bio bioResponse
	if err := json.NewDecoder(res.Body).Decode(&bio); err != nil {
		return nil, err
	}
	return &bio, nil
}
