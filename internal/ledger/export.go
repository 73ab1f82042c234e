package ledger

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportForUser writes the user's rows as CSV in the store schema.
func (l *Ledger) ExportForUser(w io.Writer, user string) error {
	entries, err := l.ListForUser(user)
	if err != nil {
		return err
	}
	if err := encodeCSV(w, entries); err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}
	return nil
}

// ExportAll writes every row as CSV in the store schema.
func (l *Ledger) ExportAll(w io.Writer) error {
	entries, err := l.All()
	if err != nil {
		return err
	}
	if err := encodeCSV(w, entries); err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}
	return nil
}

// ExportFileName returns feedback_<user>_<YYYYmmdd_HHMMSS>.csv, or
// feedback_all_<...>.csv for an empty user.
func ExportFileName(user string, now time.Time) string {
	user = strings.TrimSpace(user)
	if user == "" {
		user = "all"
	}
	user = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, user)
	return fmt.Sprintf("feedback_%s_%s.csv", user, now.Format("20060102_150405"))
}
