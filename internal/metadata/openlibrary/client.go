// Package openlibrary queries the Open Library search API.
package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://openlibrary.org/search.json"
	coversBaseURL  = "https://covers.openlibrary.org/b/id"
)

// Client provides access to the Open Library search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	logger      *slog.Logger
}

// NewClient creates an Open Library client. The API needs no key.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per second, burst of 5
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		baseURL:     defaultBaseURL,
		logger:      logger,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
