// Package streetview downloads Google Street View images of facilities.
package streetview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

// ErrNoImagery means the API answered with its placeholder rather than a
// photo of the location.
var ErrNoImagery = errors.New("no imagery available")

const (
	imageSize = "640x480"
	// Placeholder images are smaller than this.
	minImageBytes = 5000
	maxImageBytes = 10 << 20
)

// Client fetches images from the Street View Static API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Street View client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/streetview",
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the outdoor image for a postal address.
func (c *Client) Fetch(ctx context.Context, address string) ([]byte, error) {
	params := url.Values{
		"size":     {imageSize},
		"location": {address},
		"key":      {c.apiKey},
		"source":   {"outdoor"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.StreetViewDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("streetview request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("streetview API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "image") || len(body) <= minImageBytes {
		return nil, ErrNoImagery
	}
	return body, nil
}
