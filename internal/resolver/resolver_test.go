package resolver

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolve_Examples(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		catalog    []string
		wantStatus Status
		wantUser   string
		wantMatch  MatchKind
	}{
		{
			name:       "exact match",
			text:       "recommend for ai730048 please",
			catalog:    []string{"ai730048", "bx441092"},
			wantStatus: Resolved,
			wantUser:   "ai730048",
			wantMatch:  ExactMatch,
		},
		{
			name:       "case insensitive exact",
			text:       "Show me AI730048",
			catalog:    []string{"ai730048"},
			wantStatus: Resolved,
			wantUser:   "ai730048",
			wantMatch:  ExactMatch,
		},
		{
			name:       "partial window",
			text:       "show me ai73",
			catalog:    []string{"ai730048"},
			wantStatus: Resolved,
			wantUser:   "ai730048",
			wantMatch:  PartialMatch,
		},
		{
			name:       "intent without id",
			text:       "please recommend something",
			catalog:    []string{"ai730048", "bx441092"},
			wantStatus: Ambiguous,
		},
		{
			name:       "no intent no id",
			text:       "hello there",
			catalog:    []string{"ai730048"},
			wantStatus: NotFound,
		},
		{
			name:       "blank text",
			text:       "   ",
			catalog:    []string{"ai730048"},
			wantStatus: NotFound,
		},
		{
			name:       "short ids never match partially",
			text:       "abc",
			catalog:    []string{"abd"},
			wantStatus: NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.text, tt.catalog)
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s (message %q)", got.Status, tt.wantStatus, got.Message)
			}
			if got.UserID != tt.wantUser {
				t.Errorf("user = %q, want %q", got.UserID, tt.wantUser)
			}
			if got.Match != tt.wantMatch {
				t.Errorf("match = %q, want %q", got.Match, tt.wantMatch)
			}
			if got.Message == "" {
				t.Error("expected a human-readable message")
			}
		})
	}
}

func TestResolve_ExactBeatsPartial(t *testing.T) {
	// "bx44" is a window of bx441092, but ai730048 appears verbatim.
	got := Resolve("bx44 or ai730048", []string{"bx441092", "ai730048"})
	if got.UserID != "ai730048" || got.Match != ExactMatch {
		t.Errorf("expected exact ai730048, got %+v", got)
	}
}

func TestResolve_DeterministicTieBreak(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		catalog []string
		want    string
	}{
		{
			name:    "longest exact id wins",
			text:    "user ai730048",
			catalog: []string{"ai73", "ai730048", "730048"},
			want:    "ai730048",
		},
		{
			name:    "smallest of equal length",
			text:    "compare zz000001 and aa000001",
			catalog: []string{"zz000001", "aa000001"},
			want:    "aa000001",
		},
		{
			name:    "most windows wins partial",
			text:    "ai7300",
			catalog: []string{"ai739999", "ai730011"},
			want:    "ai730011",
		},
		{
			name:    "smallest on equal window hits",
			text:    "xx12",
			catalog: []string{"xx12bb", "xx12aa"},
			want:    "xx12aa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.text, tt.catalog)
			if got.UserID != tt.want {
				t.Errorf("user = %q, want %q", got.UserID, tt.want)
			}

			reversed := make([]string, len(tt.catalog))
			for i, id := range tt.catalog {
				reversed[len(tt.catalog)-1-i] = id
			}
			if again := Resolve(tt.text, reversed); again.UserID != got.UserID {
				t.Errorf("catalog order changed result: %q vs %q", again.UserID, got.UserID)
			}
		})
	}
}

func TestResolve_Samples(t *testing.T) {
	catalog := []string{"dd000004", "aa000001", "cc000003", "bb000002", "aa000001"}

	got := Resolve("recommend something", catalog)

	want := []string{"aa000001", "bb000002", "cc000003"}
	if !reflect.DeepEqual(got.Samples, want) {
		t.Errorf("samples = %v, want %v", got.Samples, want)
	}
	if !strings.Contains(got.Message, "aa000001, bb000002, cc000003...") {
		t.Errorf("message missing sample hint: %q", got.Message)
	}

	small := Resolve("hello", []string{"aa000001"})
	if strings.Contains(small.Message, "...") {
		t.Errorf("no ellipsis expected for small catalog: %q", small.Message)
	}

	empty := Resolve("hello", nil)
	if len(empty.Samples) != 0 {
		t.Errorf("expected no samples for empty catalog, got %v", empty.Samples)
	}
}

func TestResolveExactOrPartial(t *testing.T) {
	id, kind, ok := ResolveExactOrPartial("get ai73", []string{"ai730048"})
	if !ok || id != "ai730048" || kind != PartialMatch {
		t.Errorf("got %q %q %v", id, kind, ok)
	}

	if _, kind, ok := ResolveExactOrPartial("nothing here", []string{"ai730048"}); ok || kind != NoMatch {
		t.Errorf("expected no match, got %q %v", kind, ok)
	}
}

func TestHasIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Please RECOMMEND", true},
		{"give me products", true},
		{"any suggestion?", true},
		{"hello", false},
	}

	for _, tt := range tests {
		if got := HasIntent(tt.text); got != tt.want {
			t.Errorf("HasIntent(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
