package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

const source = "hydrology"

// Client implements domain.HydrologySource against an Overpass API endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	radius     float64
	metrics    *observability.Metrics
}

// NewClient creates an Overpass client that searches for water features
// within radius meters of the query point.
func NewClient(endpoint string, timeout time.Duration, radius float64, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		radius:     radius,
		metrics:    metrics,
	}
}

// Hydrology returns the planar distance to the nearest mapped water or
// wetland feature and the drainage-density proxy. A point inside a water
// polygon is at distance 0; no features within the radius reports the
// radius itself.
func (c *Client) Hydrology(ctx context.Context, lat, lon float64) (domain.HydrologySignals, error) {
	start := time.Now()
	elements, err := c.query(ctx, buildQuery(lat, lon, c.radius))
	c.observe(start, err)
	if err != nil {
		return domain.HydrologySignals{}, err
	}

	d := nearestWater(project(lat, lon), elements)
	if math.IsInf(d, 1) {
		d = c.radius
	}
	return domain.HydrologySignals{
		DistanceToWater: d,
		DrainageDensity: domain.DrainageDensityAt(lat),
	}, nil
}

func buildQuery(lat, lon, radius float64) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radius, lat, lon)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, filter := range []string{`["waterway"]`, `["natural"~"^(water|wetland)$"]`, `["water"]`} {
		fmt.Fprintf(&b, "  nwr%s%s;\n", filter, around)
	}
	b.WriteString(");\nout geom;")
	return b.String()
}

func (c *Client) query(ctx context.Context, q string) ([]element, error) {
	form := url.Values{"data": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.Contains(r.Remark, "runtime error") {
		return nil, fmt.Errorf("overpass runtime error: %s", r.Remark)
	}
	return r.Elements, nil
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

// nearestWater returns +Inf when no element carries geometry.
func nearestWater(p point, elements []element) float64 {
	best := math.Inf(1)
	for _, e := range elements {
		switch e.Type {
		case "node":
			if e.Lat != nil && e.Lon != nil {
				best = math.Min(best, dist(p, project(*e.Lat, *e.Lon)))
			}
		case "way":
			best = math.Min(best, shapeDistance(p, toPoints(e.Geometry), e.isArea()))
		case "relation":
			for _, m := range e.Members {
				best = math.Min(best, shapeDistance(p, toPoints(m.Geometry), m.Role == "outer"))
			}
		}
		if best == 0 {
			return 0
		}
	}
	return best
}

func shapeDistance(p point, line []point, area bool) float64 {
	if area && closed(line) && contains(line, p) {
		return 0
	}
	return polylineDistance(p, line)
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
	Remark   string    `json:"remark"`
}

type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat"`
	Lon      *float64          `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []coord           `json:"geometry"`
	Members  []member          `json:"members"`
}

type member struct {
	Type     string  `json:"type"`
	Role     string  `json:"role"`
	Geometry []coord `json:"geometry"`
}

type coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toPoints(cs []coord) []point {
	out := make([]point, len(cs))
	for i, c := range cs {
		out[i] = project(c.Lat, c.Lon)
	}
	return out
}

// isArea reports whether a closed way describes a water surface rather than
// a looped waterway line.
func (e element) isArea() bool {
	if _, ok := e.Tags["water"]; ok {
		return true
	}
	switch e.Tags["natural"] {
	case "water", "wetland":
		return true
	}
	switch e.Tags["waterway"] {
	case "riverbank", "dock", "boatyard":
		return true
	}
	return e.Tags["area"] == "yes"
}
