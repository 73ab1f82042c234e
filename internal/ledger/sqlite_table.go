package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/khanglvm/reco-hub/internal/logging"
)

// insertBatch bounds the rows per INSERT to stay under SQLite's variable limit.
const insertBatch = 300

// ErrClosed is returned by Load and Save after Close.
var ErrClosed = errors.New("sqlite table closed")

// SQLiteTable stores the ledger in the feedback table of a SQLite database.
// modernc.org/sqlite is pure Go, so no cgo toolchain is needed.
type SQLiteTable struct {
	db       *sql.DB
	dbPath   string
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
	closed   bool
}

// NewSQLiteTable creates a table backed by the database at path. The
// database is opened lazily.
func NewSQLiteTable(path string) *SQLiteTable {
	return &SQLiteTable{dbPath: path}
}

// Path returns the database file path.
func (t *SQLiteTable) Path() string {
	return t.dbPath
}

// init opens the database and runs migrations once.
func (t *SQLiteTable) init() error {
	t.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(t.dbPath), 0755); err != nil {
			t.initErr = fmt.Errorf("failed to create db directory: %w", err)
			return
		}

		db, err := sql.Open("sqlite", t.dbPath)
		if err != nil {
			t.initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		// One connection keeps the whole-table rewrite serialised.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			t.initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		if err := runMigrations(db); err != nil {
			db.Close()
			t.initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
		t.db = db
	})
	return t.initErr
}

// Load returns every row ordered by insertion position. A database file that
// does not exist yet is an empty table and is not created.
func (t *SQLiteTable) Load() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.db == nil {
		if _, err := os.Stat(t.dbPath); os.IsNotExist(err) {
			return []Entry{}, nil
		}
	}
	if err := t.init(); err != nil {
		return nil, err
	}

	rows, err := sq.Select("mudid", "product_id", "feedback").
		From("feedback").
		OrderBy("seq").
		RunWith(t.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var feedback int
		if err := rows.Scan(&e.UserID, &e.ProductID, &feedback); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		e.Vote = Vote(feedback)
		if e.Vote != Like && e.Vote != Dislike {
			logging.Warn().
				Str("user", e.UserID).
				Str("product", e.ProductID).
				Int("feedback", feedback).
				Msg("dropping feedback row with invalid value")
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}
	return entries, nil
}

// Save rewrites the feedback table inside one transaction.
func (t *SQLiteTable) Save(entries []Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if err := t.init(); err != nil {
		return err
	}

	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("feedback").RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to clear feedback: %w", err)
	}

	for start := 0; start < len(entries); start += insertBatch {
		end := min(start+insertBatch, len(entries))
		insert := sq.Insert("feedback").Columns("seq", "mudid", "product_id", "feedback")
		for i, e := range entries[start:end] {
			insert = insert.Values(start+i+1, e.UserID, e.ProductID, int(e.Vote))
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feedback: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (t *SQLiteTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.db == nil {
		return nil
	}
	if err := t.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	t.db = nil
	return nil
}
