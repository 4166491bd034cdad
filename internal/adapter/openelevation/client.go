package openelevation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

const source = "elevation"

// ErrNoResults is returned when the lookup succeeds but carries no elevation.
var ErrNoResults = errors.New("open-elevation returned no results")

// Client implements domain.ElevationSource using the Open-Elevation lookup API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

// NewClient creates an Open-Elevation client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
	}
}

// Elevation returns the ground elevation in meters at a point.
func (c *Client) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	loc := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	fullURL := c.baseURL + "?" + url.Values{"locations": {loc}}.Encode()

	start := time.Now()
	elev, err := c.lookup(ctx, fullURL)
	c.observe(start, err)
	return elev, err
}

func (c *Client) lookup(ctx context.Context, fullURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("open-elevation API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(r.Results) == 0 || r.Results[0].Elevation == nil {
		return 0, ErrNoResults
	}
	return *r.Results[0].Elevation, nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.UpstreamRequests.WithLabelValues(source, outcome).Inc()
}

// Open-Elevation API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}
