package config

import (
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Ledger.Backend != BackendCSV {
		t.Errorf("expected csv backend, got %q", cfg.Ledger.Backend)
	}
	if cfg.Display.TopFeatures != 3 || cfg.Display.RecentVotes != 5 {
		t.Errorf("unexpected display defaults: %+v", cfg.Display)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "/etc/reco-hub.yaml")
	path, err := GetDefaultConfigPath()
	if err != nil || path != "/etc/reco-hub.yaml" {
		t.Errorf("override ignored: %q, %v", path, err)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(ConfigPathEnvVar, "")
	path, _ = GetDefaultConfigPath()
	if path != filepath.Join(home, ".reco-hub.yaml") {
		t.Errorf("default path = %q", path)
	}
}

func TestLedgerPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name    string
		backend string
		path    string
		want    string
	}{
		{"csv default", BackendCSV, "", filepath.Join(home, ".reco-hub", "feedback.csv")},
		{"sqlite default", BackendSQLite, "", filepath.Join(home, ".reco-hub", "feedback.db")},
		{"explicit", BackendCSV, "/tmp/votes.csv", "/tmp/votes.csv"},
		{"tilde", BackendCSV, "~/votes.csv", filepath.Join(home, "votes.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Ledger.Backend = tt.backend
			cfg.Ledger.Path = tt.path

			got, err := cfg.LedgerPath()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("LedgerPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
