// Package config provides configuration loading and validation for the service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the service configuration. It can be loaded from a JSON
// file; environment variables override file values for secrets and URLs.
type Config struct {
	// Credentials and endpoints
	SerpAPIKey   string `json:"serpapi_key,omitempty" validate:"required"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty" validate:"required"`
	DatabaseURL  string `json:"database_url,omitempty" validate:"required"`
	RedisURL     string `json:"redis_url,omitempty"` // optional second cache tier

	// Search
	Query    string `json:"query,omitempty" validate:"required"`
	Location string `json:"location,omitempty" validate:"required"`

	// Validation policy
	AllowedRegions []string `json:"allowed_regions,omitempty"`
	AgencyMarkers  []string `json:"agency_markers,omitempty"`

	// Scheduling and caching
	TriggerIntervalMinutes int `json:"trigger_interval_minutes,omitempty" validate:"min=1"`
	SearchCacheTTLMinutes  int `json:"search_cache_ttl_minutes,omitempty" validate:"min=1"`
	ReconcileWindowDays    int `json:"reconcile_window_days,omitempty" validate:"min=1"`

	// Server
	ListenAddr string `json:"listen_addr,omitempty" validate:"required"`
}

// Defaults returns the configuration used when a field is not set anywhere.
func Defaults() Config {
	return Config{
		Query:                  "data engineer jobs",
		Location:               "North Carolina",
		TriggerIntervalMinutes: 30,
		SearchCacheTTLMinutes:  60,
		ReconcileWindowDays:    7,
		ListenAddr:             ":8080",
	}
}

var validate = validator.New()

// Load reads configuration from an optional JSON file, overlays environment
// variables, fills defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.applyEnv()
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// loadFile loads configuration from a JSON file.
func loadFile(path string) (*Config, error) {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the config. Environment values
// win over file values so secrets never need to live in the file.
func (c *Config) applyEnv() {
	overlay := map[string]*string{
		"SERPAPI_API_KEY":    &c.SerpAPIKey,
		"GEMINI_API_KEY":     &c.GeminiAPIKey,
		"DATABASE_URL":       &c.DatabaseURL,
		"REDIS_URL":          &c.RedisURL,
		"JOB_RADAR_QUERY":    &c.Query,
		"JOB_RADAR_LOCATION": &c.Location,
		"JOB_RADAR_LISTEN":   &c.ListenAddr,
	}
	for key, field := range overlay {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
}

// MergeWithDefaults returns a new Config with zero-value fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Query == "" {
		result.Query = defaults.Query
	}
	if result.Location == "" {
		result.Location = defaults.Location
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.TriggerIntervalMinutes == 0 {
		result.TriggerIntervalMinutes = defaults.TriggerIntervalMinutes
	}
	if result.SearchCacheTTLMinutes == 0 {
		result.SearchCacheTTLMinutes = defaults.SearchCacheTTLMinutes
	}
	if result.ReconcileWindowDays == 0 {
		result.ReconcileWindowDays = defaults.ReconcileWindowDays
	}

	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			f := invalid[0]
			return fmt.Errorf("config error: field %s failed %q validation", f.Field(), f.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// TriggerInterval is the minimum spacing between pipeline cycles.
func (c *Config) TriggerInterval() time.Duration {
	return time.Duration(c.TriggerIntervalMinutes) * time.Minute
}

// SearchCacheTTL is how long raw provider responses stay cached.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCacheTTLMinutes) * time.Minute
}

// ReconcileWindow is the recency window for profile reconciliation.
func (c *Config) ReconcileWindow() time.Duration {
	return time.Duration(c.ReconcileWindowDays) * 24 * time.Hour
}
