/*
Package config handles loading and saving reco-hub configuration.

Configuration is layered: built-in defaults, then ~/.reco-hub.yaml (or the file
named by RECO_HUB_CONFIG), then RECO_HUB_* environment variables.

Schema:

	data:
	  recommendations_path: /data/recommendations.csv
	ledger:
	  backend: csv            # csv | sqlite
	  path: ~/.reco-hub/feedback.csv
	display:
	  top_features: 3
	  recent_votes: 5
	  min_score: 0
	logging:
	  level: info
	  format: console
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "RECO_HUB_CONFIG"

// EnvPrefix prefixes every environment override, e.g. RECO_HUB_LEDGER_BACKEND.
const EnvPrefix = "RECO_HUB_"

// Ledger backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the root configuration structure.
type Config struct {
	Data    DataConfig    `koanf:"data" yaml:"data"`
	Ledger  LedgerConfig  `koanf:"ledger" yaml:"ledger"`
	Display DisplayConfig `koanf:"display" yaml:"display"`
	Logging LoggingConfig `koanf:"logging" yaml:"logging"`
}

// DataConfig locates the recommendation table.
type DataConfig struct {
	// RecommendationsPath is the CSV of recommendation records. Empty means
	// the built-in demo table.
	RecommendationsPath string `koanf:"recommendations_path" yaml:"recommendations_path"`
}

// LedgerConfig selects the feedback store.
type LedgerConfig struct {
	Backend string `koanf:"backend" yaml:"backend" validate:"oneof=csv sqlite"`

	// Path defaults to ~/.reco-hub/feedback.csv or feedback.db by backend.
	Path string `koanf:"path" yaml:"path,omitempty"`
}

// DisplayConfig holds presentation defaults.
type DisplayConfig struct {
	// TopFeatures is how many explanation rows to show; 0 shows all.
	TopFeatures int     `koanf:"top_features" yaml:"top_features" validate:"gte=0,lte=100"`
	RecentVotes int     `koanf:"recent_votes" yaml:"recent_votes" validate:"gte=1,lte=1000"`
	MinScore    float64 `koanf:"min_score" yaml:"min_score" validate:"gte=0,lte=1"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=console json"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Backend: BackendCSV,
		},
		Display: DisplayConfig{
			TopFeatures: 3,
			RecentVotes: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetDefaultConfigPath returns $RECO_HUB_CONFIG or ~/.reco-hub.yaml.
func GetDefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".reco-hub.yaml"), nil
}

// LedgerPath returns the configured ledger path or the backend's default.
func (c *Config) LedgerPath() (string, error) {
	if c.Ledger.Path != "" {
		return expandHome(c.Ledger.Path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	name := "feedback.csv"
	if c.Ledger.Backend == BackendSQLite {
		name = "feedback.db"
	}
	return filepath.Join(home, ".reco-hub", name), nil
}

// RecommendationsPath returns the data path with ~ expanded.
func (c *Config) RecommendationsPath() (string, error) {
	if c.Data.RecommendationsPath == "" {
		return "", nil
	}
	return expandHome(c.Data.RecommendationsPath)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
