package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrors_Unwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"permission", &PermissionError{Path: "/x", Op: "read", Fix: "chmod 644 /x"}, fs.ErrPermission},
		{"not found", &ConfigNotFoundError{Path: "/x"}, fs.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%T, %v) = false", tt.err, tt.target)
			}
		})
	}
}

func TestConfigNotFoundError_DefaultHint(t *testing.T) {
	err := &ConfigNotFoundError{Path: "/tmp/reco.yaml"}
	if !strings.Contains(err.Error(), "reco-hub --config /tmp/reco.yaml config init") {
		t.Errorf("missing init hint: %q", err.Error())
	}
}

func TestInvalidConfigError_Problems(t *testing.T) {
	err := &InvalidConfigError{
		Path:     "/tmp/reco.yaml",
		Problems: []string{"ledger.backend: must be one of csv sqlite (got x)", "display.min_score: must be <= 1 (got 2)"},
		Hint:     "check values",
	}

	msg := err.Error()
	if !strings.Contains(msg, "  - ledger.backend:") || !strings.Contains(msg, "  - display.min_score:") {
		t.Errorf("problems not listed: %q", msg)
	}
	if !err.HasProblem("display.min_score") {
		t.Error("HasProblem(display.min_score) = false")
	}
	if err.HasProblem("display.min") {
		t.Error("HasProblem must match whole keys")
	}
}
