// Package daemon manages the powertray daemon lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Plans     PlansConfig     `toml:"plans"`
	Timing    TimingConfig    `toml:"timing"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the local HTTP control server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlansConfig controls the plan directory backend.
type PlansConfig struct {
	// Fake swaps the OS directory for an in-memory one. Development
	// and test aid; the daemon otherwise requires a supported OS.
	Fake bool `toml:"fake"`
}

// TimingConfig holds the two poll cadences. The defaults (1s AFK
// check, 2s active-plan poll) match the original tray's timers; tests
// shrink them.
type TimingConfig struct {
	AfkCheckInterval string `toml:"afk_check_interval"`
	PollInterval     string `toml:"poll_interval"`
}

// TelemetryConfig controls the /metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7517,
		},
		Timing: TimingConfig{
			AfkCheckInterval: "1s",
			PollInterval:     "2s",
		},
	}
}

// LoadConfig reads config from <home>/config.toml, falling back to
// defaults when the file does not exist.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(Home(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to <home>/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(Home(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Home returns the powertray data directory, honoring POWERTRAY_HOME.
func Home() string {
	if env := os.Getenv("POWERTRAY_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".powertray")
}

// parseDuration parses a duration string, returning a fallback on
// error or empty input.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
