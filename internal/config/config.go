// Package config provides configuration loading and validation for the
// panelpeace server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
)

// Config represents settings that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Client
	APIURL       string `json:"api_url,omitempty"`       // Base URL of a running API server
	SessionStore string `json:"session_store,omitempty"` // "memory" or "sqlite"
	SessionPath  string `json:"session_path,omitempty"`  // SQLite file holding the login session

	// Views
	UpcomingDays int `json:"upcoming_days,omitempty"` // Window for the upcoming deadline list

	Verbose bool `json:"verbose,omitempty"` // Print detailed output
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	sessionPath := "panelpeace-session.db"
	if dir, err := os.UserConfigDir(); err == nil {
		sessionPath = filepath.Join(dir, "panelpeace", "session.db")
	}
	return Config{
		Port:         8080,
		APIURL:       "http://localhost:8080",
		SessionStore: SessionStoreSQLite,
		SessionPath:  sessionPath,
		UpcomingDays: 7,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.UpcomingDays < 0 {
		return fmt.Errorf("config error: 'upcoming_days' must be non-negative")
	}
	switch c.SessionStore {
	case "", SessionStoreMemory, SessionStoreSQLite:
	default:
		return fmt.Errorf("config error: 'session_store' must be %q or %q", SessionStoreMemory, SessionStoreSQLite)
	}
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'api_url' must be an absolute http(s) URL")
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.SessionStore == "" {
		result.SessionStore = defaults.SessionStore
	}
	if result.SessionPath == "" {
		result.SessionPath = defaults.SessionPath
	}
	if result.UpcomingDays == 0 {
		result.UpcomingDays = defaults.UpcomingDays
	}

	// Bools cannot distinguish unset from false; CLI flags win.

	return result
}
