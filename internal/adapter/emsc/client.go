package emsc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
	"github.com/couchcryptid/quake-feed-publisher/internal/observability"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client fetches and parses the EMSC RSS feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. metrics may be nil.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the feed and returns its items in feed order. Transport
// failures and non-200 responses are returned as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.FetchError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(body)),
		}
	}

	items, err := ParseFeed(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("feed fetched", "items", len(items), "duration", time.Since(start))
	return items, nil
}
