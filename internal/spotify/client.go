// Package spotify is a minimal client for the Spotify Web API endpoints used
// to fetch mood recommendations and search tracks with an application-only
// credential.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultMarket is the market code sent with every catalog request.
	DefaultMarket = "US"

	userAgent = "moodify/1.0"

	// maxErrorBody bounds how much of a failed response body is kept for logs.
	maxErrorBody = 1024
)

// ErrMalformedPayload is returned when a response does not match the
// expected track schema.
var ErrMalformedPayload = errors.New("malformed provider payload")

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.StatusCode)
}

// Temporary reports whether the request may succeed if retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// TokenSource supplies bearer tokens for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Client calls the Spotify Web API.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	market     string

	maxRetries    uint64
	retryInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMarket sets the market code sent with catalog requests.
func WithMarket(market string) Option {
	return func(c *Client) {
		if market != "" {
			c.market = market
		}
	}
}

// WithRetry sets how many times a throttled or failed request is retried and
// the initial wait between attempts.
func WithRetry(maxRetries uint64, interval time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// NewClient creates a Client that authorizes requests with tokens.
func NewClient(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:       DefaultBaseURL,
		market:        DefaultMarket,
		maxRetries:    3,
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Market returns the market code sent with catalog requests.
func (c *Client) Market() string {
	return c.market
}

// doSingleRequest performs one authorized GET and returns the response body.
func (c *Client) doSingleRequest(ctx context.Context, reqURL, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func (c *Client) endpoint(path, rawQuery string) string {
	return c.baseURL + path + "?" + rawQuery
}
