// Package weather provides current-conditions lookups used by the
// weather-aware reminder rules. The client speaks the OpenWeatherMap
// current weather API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// Report is the slice of a weather response the rules care about.
type Report struct {
	TemperatureCelsius float64
	Condition          string // e.g. "Clouds", "Rain", "Thunderstorm"
	Humidity           int
	City               string
}

// Provider fetches current conditions for a coordinate pair.
// Implementations may fail with network or parse errors; callers are
// expected to treat a failure as "no weather rule this run".
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64) (*Report, error)
}

// Config holds the weather client configuration.
type Config struct {
	// BaseURL is the API root (e.g. https://api.openweathermap.org)
	BaseURL string
	// APIKey is the OpenWeatherMap app id
	APIKey string
	// Timeout is the HTTP timeout for weather requests
	Timeout time.Duration
}

// DefaultConfig returns the default weather client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.openweathermap.org",
		Timeout: 10 * time.Second,
	}
}

// Client fetches current weather over HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new weather client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openweathermap.org"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type currentWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

// Fetch returns current conditions for (lat, lon) in metric units.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Report, error) {
	endpoint := fmt.Sprintf("%s/data/2.5/weather", c.config.BaseURL)

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("units", "metric")
	query.Set("appid", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create weather request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "weather request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("weather API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode weather response")
	}

	report := &Report{
		TemperatureCelsius: parsed.Main.Temp,
		Humidity:           parsed.Main.Humidity,
		City:               parsed.Name,
	}
	if len(parsed.Weather) > 0 {
		report.Condition = parsed.Weather[0].Main
	}
	return report, nil
}
