// Package provider holds the HTTP plumbing shared by the weather, maps and
// geocoding clients: a bounded timeout per call, a token-bucket rate limit
// and JSON decoding.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable indicates the upstream service could not be reached or
	// answered with a non-success status.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrNoData indicates the upstream answered but had nothing for the query.
	ErrNoData = errors.New("provider returned no data")
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
	UserAgent string
}

// DefaultOptions returns an 8 second timeout and a limit of 5 requests per second.
func DefaultOptions() Options {
	return Options{
		Timeout:   8 * time.Second,
		RateLimit: 5,
		Burst:     5,
		UserAgent: "spotsurfer/1.0",
	}
}

// Client issues GET requests that decode JSON responses.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	opts    Options
}

// NewClient creates a Client. A nil httpClient uses a dialer with a five
// second connect timeout.
func NewClient(opts Options, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{http: httpClient, limiter: limiter, opts: opts}
}

// GetJSON fetches base?params and decodes the body into out.
// Transport failures and non-2xx statuses wrap ErrUnavailable.
func (c *Client) GetJSON(ctx context.Context, base string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
		}
	}

	u := base
	if len(params) > 0 {
		u = base + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
