package search

import (
	"reflect"
	"testing"
)

func newTestIndex(t *testing.T, ids []string) *CatalogIndex {
	t.Helper()
	idx, err := NewCatalogIndex(ids)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestNewCatalogIndex(t *testing.T) {
	idx := newTestIndex(t, []string{"ai730048", "bx441092", "ai730048", " ", "AI111111"})

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("failed to get count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 indexed ids, got %d", count)
	}
	if got := idx.IDs(); !reflect.DeepEqual(got, []string{"ai730048", "bx441092", "AI111111"}) {
		t.Errorf("IDs = %v", got)
	}
}

func TestCatalogIndex_Search(t *testing.T) {
	idx := newTestIndex(t, []string{"zz730001", "ai730048", "bx441092", "AI111111"})

	tests := []struct {
		name  string
		q     string
		limit int
		want  []string
	}{
		{"substring keeps catalog order", "730", 0, []string{"zz730001", "ai730048"}},
		{"case insensitive", "Ai", 0, []string{"ai730048", "AI111111"}},
		{"prefix", "bx", 0, []string{"bx441092"}},
		{"limit", "1", 2, []string{"zz730001", "bx441092"}},
		{"no match", "qq", 0, []string{}},
		{"empty query returns all", "  ", 0, []string{"zz730001", "ai730048", "bx441092", "AI111111"}},
		{"wildcards ignored", "a*i", 0, []string{"ai730048", "AI111111"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Search(tt.q, tt.limit)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestCatalogIndex_Empty(t *testing.T) {
	idx := newTestIndex(t, nil)

	got, err := idx.Search("ai", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}
