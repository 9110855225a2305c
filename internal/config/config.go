package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the flat tide configuration.
type Config struct {
	Version  string `json:"version"`
	UserID   string `json:"user_id"`
	DataDir  string `json:"data_dir,omitempty"`  // overrides ~/.tide
	Timezone string `json:"timezone,omitempty"`  // IANA name, defaults to UTC
}

// LoadConfig reads .tide/config.json from the specified directory.
// Resolution order: dir, then home. Returns error if no config found -
// caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".tide", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		path = filepath.Join(home, ".tide", "config.json")
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory.
func SaveConfig(dir string, cfg *Config) error {
	tideDir := filepath.Join(dir, ".tide")
	if err := os.MkdirAll(tideDir, 0755); err != nil {
		return fmt.Errorf("failed to create .tide dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(tideDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveDataDir returns the directory holding the index database and
// document store, creating it if needed.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".tide")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}
	return dir, nil
}

// ResolveTimezone validates the configured timezone name, falling back
// to UTC when unset.
func (c *Config) ResolveTimezone() (string, error) {
	tz := c.Timezone
	if tz == "" {
		return "UTC", nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return tz, nil
}
