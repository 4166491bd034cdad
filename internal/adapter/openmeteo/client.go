package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

const source = "weather"

// Client implements domain.WeatherSource using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

// NewClient creates an Open-Meteo forecast client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
	}
}

// Weather fetches a three-day forecast and aggregates it into the weather
// signal group. Rainfall is the sum of the first 24 hourly values.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (domain.WeatherSignals, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"hourly":        {"precipitation,relative_humidity_2m,temperature_2m"},
		"daily":         {"precipitation_sum,precipitation_probability_max"},
		"forecast_days": {"3"},
		"timezone":      {"auto"},
	}

	start := time.Now()
	var resp response
	err := c.get(ctx, c.baseURL+"?"+params.Encode(), &resp)
	c.observe(start, err)
	if err != nil {
		return domain.WeatherSignals{}, err
	}
	return resp.signals(), nil
}

func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
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

// Open-Meteo API response types.

type response struct {
	Hourly struct {
		Precipitation    []float64 `json:"precipitation"`
		RelativeHumidity []float64 `json:"relative_humidity_2m"`
		Temperature      []float64 `json:"temperature_2m"`
	} `json:"hourly"`
	Daily struct {
		PrecipitationSum            []float64 `json:"precipitation_sum"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (r response) signals() domain.WeatherSignals {
	current := floats.Sum(head(r.Hourly.Precipitation, 24))

	weekly := current
	if len(r.Daily.PrecipitationSum) > 0 {
		weekly = floats.Sum(head(r.Daily.PrecipitationSum, 7))
	}

	return domain.WeatherSignals{
		CurrentRainfall:          current,
		WeeklyRainfall:           weekly,
		SoilMoisture:             domain.MeasuredSoilMoisture,
		Humidity:                 meanOr(head(r.Hourly.RelativeHumidity, 24), domain.DefaultHumidity),
		Temperature:              meanOr(head(r.Hourly.Temperature, 24), domain.DefaultTemperature),
		PrecipitationProbability: meanOr(head(r.Daily.PrecipitationProbabilityMax, 3), 0),
	}
}

func head(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

func meanOr(xs []float64, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	return stat.Mean(xs, nil)
}
