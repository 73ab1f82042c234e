package config

import (
	"fmt"
	"io/fs"
	"strings"
)

// PermissionError is returned when the config file or its directory cannot
// be read or written. It matches fs.ErrPermission.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string
	Details string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot %s reco-hub config %s: permission denied\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details + "\n")
	}
	b.WriteString("💡 Fix: " + e.Fix)
	return b.String()
}

func (e *PermissionError) Unwrap() error { return fs.ErrPermission }

// ConfigNotFoundError is returned when an explicitly named config file does
// not exist. It matches fs.ErrNotExist.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	hint := e.Hint
	if hint == "" {
		hint = fmt.Sprintf("Run 'reco-hub --config %s config init' to create it", e.Path)
	}
	return fmt.Sprintf("no reco-hub config at %s\n\n💡 %s", e.Path, hint)
}

func (e *ConfigNotFoundError) Unwrap() error { return fs.ErrNotExist }

// InvalidConfigError reports a config that cannot be decoded (Message) or
// whose values are out of range (Problems, one "key: rule (got value)" each).
type InvalidConfigError struct {
	Path     string
	Message  string
	Problems []string
	Hint     string
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid reco-hub config")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	b.WriteString("\n")
	if e.Message != "" {
		b.WriteString(e.Message + "\n")
	}
	for _, p := range e.Problems {
		b.WriteString("  - " + p + "\n")
	}
	if e.Hint != "" {
		b.WriteString("💡 " + e.Hint)
	}
	return strings.TrimRight(b.String(), "\n")
}

// HasProblem reports whether any problem names key, e.g. "ledger.backend".
func (e *InvalidConfigError) HasProblem(key string) bool {
	for _, p := range e.Problems {
		if strings.HasPrefix(p, key+":") {
			return true
		}
	}
	return false
}
