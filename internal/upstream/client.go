// Package upstream implements the HTTP collaborator that supplies raw
// per-year summary payloads and the accident identifier corpus. Retries live
// here rather than in the aggregation engine; a caller-supplied context
// deadline always wins over the retry schedule.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ehs-tools/safety-dashboard/pkg/constants"
	"go.uber.org/zap"
)

const (
	summariesPath = "/api/v1/summaries"
	accidentsPath = "/api/v1/accidents/codes"
)

// Client talks to the EHS backend service.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	logger          *zap.Logger
	retryMaxElapsed time.Duration
	maxResponse     int64
}

// Option adjusts Client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryMaxElapsed bounds the total exponential retry window per fetch.
// Zero disables retries entirely.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *Client) {
		c.retryMaxElapsed = d
	}
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultUpstreamTimeoutSeconds * time.Second,
		},
		logger:          logger,
		retryMaxElapsed: constants.DefaultRetryMaxElapsedSeconds * time.Second,
		maxResponse:     constants.DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchYearSummary retrieves the raw summary payload for one calendar year.
// The payload comes back as a decoded JSON object; normalization is the
// engine's job, not the transport's.
func (c *Client) FetchYearSummary(ctx context.Context, year int) (map[string]any, error) {
	url := fmt.Sprintf("%s%s/%d", c.baseURL, summariesPath, year)

	body, err := c.getWithRetry(ctx, "summaries", url)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding summary for %d: %w", year, err)
	}
	payload, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("summary for %d is not a JSON object", year)
	}
	return payload, nil
}

// FetchAccidentCodes retrieves the accident business identifier corpus. Both
// a bare JSON array and a {"codes": [...]} wrapper are accepted, since the
// listing endpoint has drifted between the two shapes.
func (c *Client) FetchAccidentCodes(ctx context.Context) ([]string, error) {
	url := c.baseURL + accidentsPath

	body, err := c.getWithRetry(ctx, "accidents", url)
	if err != nil {
		return nil, err
	}

	var bare []string
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Codes []string `json:"codes"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding accident code listing: %w", err)
	}
	return wrapped.Codes, nil
}

// getWithRetry performs a GET with exponential backoff. Client errors (4xx)
// are permanent; server errors and transport failures retry until the window
// closes or the context is done.
func (c *Client) getWithRetry(ctx context.Context, endpoint, url string) ([]byte, error) {
	var body []byte
	started := time.Now()

	operation := func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	}

	// MaxElapsedTime of zero means "retry forever" to backoff, so a
	// disabled retry window maps to the single-attempt policy instead.
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if c.retryMaxElapsed > 0 {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = c.retryMaxElapsed
		policy = b
	}
	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))

	observeFetch(endpoint, err, time.Since(started).Seconds())
	if err != nil {
		c.logger.Warn("upstream fetch failed",
			zap.String("op", "upstream.getWithRetry"),
			zap.String("endpoint", endpoint),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, backoff.Permanent(fmt.Errorf("upstream returned %d for %s", resp.StatusCode, url))
	default:
		return nil, fmt.Errorf("upstream returned %d for %s", resp.StatusCode, url)
	}
}
