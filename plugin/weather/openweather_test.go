package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchParsesCurrentConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lon"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 7.4, "humidity": 81},
			"weather": [{"main": "Rain", "description": "light rain"}],
			"name": "Haifa"
		}`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	report, err := client.Fetch(context.Background(), 32.79, 34.98)
	require.NoError(t, err)

	assert.Equal(t, 7.4, report.TemperatureCelsius)
	assert.Equal(t, "Rain", report.Condition)
	assert.Equal(t, 81, report.Humidity)
	assert.Equal(t, "Haifa", report.City)
}

func TestFetchEmptyWeatherArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": 21.0, "humidity": 50}, "weather": [], "name": "Eilat"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	report, err := client.Fetch(context.Background(), 29.55, 34.95)
	require.NoError(t, err)

	assert.Equal(t, 21.0, report.TemperatureCelsius)
	assert.Empty(t, report.Condition)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "bad-key"})
	_, err := client.Fetch(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	_, err := client.Fetch(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil)
	assert.Equal(t, "https://api.openweathermap.org", client.config.BaseURL)
	assert.NotZero(t, client.config.Timeout)
}
