package record

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrMissingColumn is returned when the table header lacks the user column.
var ErrMissingColumn = errors.New("missing required column")

// Table is a loaded recommendation table. It is the catalog provider
// (Catalog) and raw-row provider (Row) of the dashboard.
type Table struct {
	header []string
	rows   []RawRow
}

// NewTable builds a table from already split rows.
func NewTable(rows []RawRow) *Table {
	return &Table{header: Columns, rows: rows}
}

// LoadTable reads a recommendation CSV with a header row.
func LoadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, ColUser)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	hasUser := false
	for _, h := range header {
		if h == ColUser {
			hasUser = true
			break
		}
	}
	if !hasUser {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColUser)
	}

	t := &Table{header: header}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.rows)+1, err)
		}
		row := make(RawRow, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = fields[i]
			}
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// LoadTableFile opens and reads a recommendation CSV file.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recommendations: %w", err)
	}
	defer f.Close()

	return LoadTable(f)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Header returns the column names as read.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Catalog lists the distinct user ids in table order.
func (t *Table) Catalog() []string {
	seen := make(map[string]bool, len(t.rows))
	ids := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		id := strings.TrimSpace(row[ColUser])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Row returns the first row for user.
func (t *Table) Row(user string) (RawRow, bool) {
	for _, row := range t.rows {
		if strings.TrimSpace(row[ColUser]) == user {
			return row, true
		}
	}
	return nil, false
}

// ParseAll parses every row concurrently. Results keep table order.
// workers <= 0 uses one worker per CPU.
func (t *Table) ParseAll(ctx context.Context, workers int) ([]*RecommendationSet, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sets := make([]*RecommendationSet, len(t.rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range t.rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sets[i] = Parse(row)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}
	return sets, nil
}

// SampleTable returns the built-in single-user demo table.
func SampleTable() *Table {
	return NewTable([]RawRow{{
		ColUser:           "ai730048",
		ColProducts:       "[152415, 101115, 222273, 100161, 222453, 100349, 209207]",
		ColFinalScore:     "[0.8, 0.11, 0.11, 0.11, 0.11, 0.11, 0.11]",
		ColRFScore:        "[0.35, 0.35, 0.35, 0.35, 0.35, 0.35, 0.35]",
		ColCFScore:        "[1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0]",
		ColVisitedStudies: "['152415']",
		ColExplanations:   "[{152415: [{'feature': 'user_ACCOUNT_ACTIVE_Y', 'value': 0.0, 'impact': 0.05}]}]",
	}})
}
