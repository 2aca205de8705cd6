package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where guarden stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Weather Configuration
	WeatherAPIKey  string // GUARDEN_WEATHER_API_KEY
	WeatherBaseURL string // GUARDEN_WEATHER_BASE_URL (default: https://api.openweathermap.org)

	// AI Configuration
	AIEnabled  bool   // GUARDEN_AI_ENABLED
	AIProvider string // GUARDEN_AI_PROVIDER (default: openai)
	AIAPIKey   string // GUARDEN_AI_API_KEY
	AIBaseURL  string // GUARDEN_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel    string // GUARDEN_AI_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the chat advisor is enabled and an API key
// or base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIAPIKey != "" || p.AIBaseURL != "")
}

// IsWeatherEnabled returns true if weather lookups can be performed.
func (p *Profile) IsWeatherEnabled() bool {
	return p.WeatherAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from GUARDEN_* environment variables.
func (p *Profile) FromEnv() {
	p.WeatherAPIKey = os.Getenv("GUARDEN_WEATHER_API_KEY")
	p.WeatherBaseURL = getEnvOrDefault("GUARDEN_WEATHER_BASE_URL", "https://api.openweathermap.org")

	p.AIEnabled = os.Getenv("GUARDEN_AI_ENABLED") == "true"
	p.AIProvider = getEnvOrDefault("GUARDEN_AI_PROVIDER", "openai")
	p.AIAPIKey = os.Getenv("GUARDEN_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("GUARDEN_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("GUARDEN_AI_MODEL", "gpt-4o-mini")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "guarden")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/guarden"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("guarden_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
