package record

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const tableCSV = `MUDID,Recommended_Product,Final_Score,RF_Score,CF_Score,Visited_Studies,SHAP
ai730048,"[10, 20, 30]","[0.8, 0.3, 0.6]","[0.1, 0.2, 0.3]","[1.0, 0.0, 0.0]",['10'],"[{10: [{'feature': 'f1', 'value': 0, 'impact': 0.05}]}]"
bx441092,"[40]","[0.9]","[0.9]","[0.9]",[],[]
ai730048,"[99]","[0.1]","[0.1]","[0.1]",[],[]
`

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(strings.NewReader(tableCSV))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Len())
	}

	wantCatalog := []string{"ai730048", "bx441092"}
	if got := table.Catalog(); !reflect.DeepEqual(got, wantCatalog) {
		t.Errorf("Catalog() = %v, want %v", got, wantCatalog)
	}

	row, ok := table.Row("ai730048")
	if !ok {
		t.Fatal("expected row for ai730048")
	}
	if row[ColProducts] != "[10, 20, 30]" {
		t.Errorf("expected first row for duplicate user, got %q", row[ColProducts])
	}

	if _, ok := table.Row("zz000000"); ok {
		t.Error("expected no row for unknown user")
	}
}

func TestLoadTable_MissingUserColumn(t *testing.T) {
	_, err := LoadTable(strings.NewReader("user,Recommended_Product\nu1,[1]\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}

	_, err = LoadTable(strings.NewReader(""))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn for empty input, got %v", err)
	}
}

func TestLoadTable_ShortRows(t *testing.T) {
	table, err := LoadTable(strings.NewReader("MUDID,Recommended_Product,Final_Score\nu1,[1]\n"))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	set := Parse(mustRow(t, table, "u1"))
	if !set.HasWarning(ColFinalScore, MalformedField) {
		t.Errorf("expected warning for absent cell, got %v", set.Warnings)
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommendations.csv")
	if err := os.WriteFile(path, []byte(tableCSV), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	table, err := LoadTableFile(path)
	if err != nil {
		t.Fatalf("LoadTableFile failed: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Len())
	}

	if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTable_ParseAll(t *testing.T) {
	table, err := LoadTable(strings.NewReader(tableCSV))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	sets, err := table.ParseAll(context.Background(), 2)
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(sets))
	}

	wantUsers := []string{"ai730048", "bx441092", "ai730048"}
	for i, set := range sets {
		if set.UserID != wantUsers[i] {
			t.Errorf("set %d: expected user %s, got %s", i, wantUsers[i], set.UserID)
		}
	}
	if sets[1].RankedProducts[0] != "40" {
		t.Errorf("expected order to be preserved, got %v", sets[1].RankedProducts)
	}
}

func TestTable_ParseAllCancelled(t *testing.T) {
	table, err := LoadTable(strings.NewReader(tableCSV))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := table.ParseAll(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func mustRow(t *testing.T, table *Table, user string) RawRow {
	t.Helper()
	row, ok := table.Row(user)
	if !ok {
		t.Fatalf("no row for %s", user)
	}
	return row
}
