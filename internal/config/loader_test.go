package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reco-hub.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ledger.Backend != BackendCSV || cfg.Display.RecentVotes != 5 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFrom_Layering(t *testing.T) {
	path := writeConfig(t, `
data:
  recommendations_path: /data/recs.csv
ledger:
  backend: sqlite
display:
  top_features: 5
`)
	t.Setenv("RECO_HUB_DISPLAY_TOP_FEATURES", "7")
	t.Setenv("RECO_HUB_LOGGING_LEVEL", "debug")
	t.Setenv("RECO_HUB_UNRELATED", "x")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Data.RecommendationsPath != "/data/recs.csv" {
		t.Errorf("file value lost: %q", cfg.Data.RecommendationsPath)
	}
	if cfg.Ledger.Backend != BackendSQLite {
		t.Errorf("file should override default backend, got %q", cfg.Ledger.Backend)
	}
	if cfg.Display.TopFeatures != 7 {
		t.Errorf("env should override file, got %d", cfg.Display.TopFeatures)
	}
	if cfg.Display.RecentVotes != 5 {
		t.Errorf("default should survive, got %d", cfg.Display.RecentVotes)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env logging level ignored, got %q", cfg.Logging.Level)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected ConfigNotFoundError, got %T: %v", err, err)
		}
		if !strings.Contains(err.Error(), "reco-hub config init") {
			t.Errorf("missing hint: %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "ledger: [unclosed\n")
		_, err := LoadFrom(path)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %T: %v", err, err)
		}
		if !strings.Contains(invalid.Hint, ".bak") {
			t.Errorf("expected restore hint, got %q", invalid.Hint)
		}
	})

	t.Run("invalid backend", func(t *testing.T) {
		path := writeConfig(t, "ledger:\n  backend: postgres\n")
		_, err := LoadFrom(path)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %T: %v", err, err)
		}
		if invalid.Path != path || !invalid.HasProblem("ledger.backend") {
			t.Errorf("unexpected error: %+v", invalid)
		}
	})

	t.Run("invalid env value", func(t *testing.T) {
		path := writeConfig(t, "{}\n")
		t.Setenv("RECO_HUB_DISPLAY_MIN_SCORE", "1.5")
		_, err := LoadFrom(path)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) || !invalid.HasProblem("display.min_score") {
			t.Fatalf("expected min_score error, got %v", err)
		}
	})
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RECO_HUB_LEDGER_BACKEND", "ledger.backend"},
		{"RECO_HUB_DATA_RECOMMENDATIONS_PATH", "data.recommendations_path"},
		{"RECO_HUB_CONFIG", ""},
		{"RECO_HUB_LEDGER", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
