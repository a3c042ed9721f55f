// Package googlebooks queries the Google Books volumes API.
package googlebooks

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Client provides access to the Google Books search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	logger      *slog.Logger
}

// NewClient creates a Google Books client. An empty apiKey sends
// unauthenticated requests, which Google serves at a lower quota.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per second, burst of 5
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		logger:      logger,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
