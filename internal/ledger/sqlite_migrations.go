package ledger

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/khanglvm/reco-hub/internal/logging"
)

// migration is a single schema step.
type migration struct {
	version int
	name    string
	up      func(db *sql.DB) error
}

var migrations = []migration{
	{version: 1, name: "feedback_table", up: migration001Feedback},
	{version: 2, name: "feedback_pair_index", up: migration002PairIndex},
}

// runMigrations applies every migration newer than the recorded version.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var version int
	if err := sq.Select("COALESCE(MAX(version), 0)").
		From("schema_migrations").
		RunWith(db).
		QueryRow().
		Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		logging.Debug().Int("version", m.version).Str("name", m.name).Msg("running migration")
		if err := m.up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := sq.Insert("schema_migrations").
			Columns("version", "name").
			Values(m.version, m.name).
			RunWith(db).
			Exec(); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}
	return nil
}

func migration001Feedback(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			seq INTEGER PRIMARY KEY,
			mudid TEXT NOT NULL,
			product_id TEXT NOT NULL,
			feedback INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create feedback table: %w", err)
	}
	return nil
}

// migration002PairIndex indexes lookups by (user, product).
func migration002PairIndex(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_feedback_pair
		ON feedback(mudid, product_id)
	`); err != nil {
		return fmt.Errorf("failed to create feedback pair index: %w", err)
	}
	return nil
}
