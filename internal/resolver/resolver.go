/*
Package resolver maps free-text requests to a known user id.

Matching runs in stages and the first stage that matches wins:

 1. exact: a catalog id appears in the text (case-insensitive)
 2. partial: any 4-character window of a catalog id appears in the text
 3. intent: the text asks for recommendations but names no id (Ambiguous)
 4. otherwise NotFound

Ties inside a stage are broken deterministically, independent of catalog order:
exact matches prefer the longest id, partial matches prefer the id with the most
matching windows, and both fall back to the lexicographically smallest id.
*/
package resolver

import (
	"sort"
	"strings"
)

// windowSize is the partial-match window length in runes.
const windowSize = 4

// maxSamples is how many catalog ids a hint includes.
const maxSamples = 3

// intentKeywords signal a recommendation request.
var intentKeywords = []string{
	"recommend",
	"suggestion",
	"show",
	"get",
	"find",
	"what",
	"give me",
}

// Status is the outcome of Resolve.
type Status string

const (
	Resolved  Status = "resolved"
	Ambiguous Status = "ambiguous"
	NotFound  Status = "not_found"
)

// MatchKind says which stage produced a match.
type MatchKind string

const (
	NoMatch      MatchKind = ""
	ExactMatch   MatchKind = "exact"
	PartialMatch MatchKind = "partial"
)

// Result is a structured resolution outcome. It is never an error: the
// Message carries a human-readable hint for the UI.
type Result struct {
	Status  Status    `json:"status"`
	UserID  string    `json:"user_id,omitempty"`
	Match   MatchKind `json:"match,omitempty"`
	Message string    `json:"message"`
	Samples []string  `json:"samples,omitempty"`
}

// Resolve maps text to a catalog id.
func Resolve(text string, catalog []string) Result {
	ids := normalize(catalog)
	samples := sampleIDs(ids)

	if strings.TrimSpace(text) == "" {
		return Result{
			Status:  NotFound,
			Message: "empty query",
			Samples: samples,
		}
	}

	if id, kind, ok := resolveIDs(text, ids); ok {
		msg := "Found user ID: " + id
		if kind == PartialMatch {
			msg = "Matched partial ID: " + id
		}
		return Result{Status: Resolved, UserID: id, Match: kind, Message: msg}
	}

	hint := sampleHint(ids)
	if HasIntent(text) {
		return Result{
			Status: Ambiguous,
			Message: "I understand you want recommendations, but I need a user ID. " +
				"Try including a user ID in your request. " + hint,
			Samples: samples,
		}
	}

	return Result{
		Status:  NotFound,
		Message: "I couldn't find a matching user ID in your request. " + hint,
		Samples: samples,
	}
}

// ResolveExactOrPartial runs only the matching stages.
func ResolveExactOrPartial(text string, catalog []string) (string, MatchKind, bool) {
	return resolveIDs(text, normalize(catalog))
}

// HasIntent reports whether text contains a recommendation-request keyword.
func HasIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range intentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func resolveIDs(text string, ids []string) (string, MatchKind, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", NoMatch, false
	}

	if id, ok := exactMatch(lower, ids); ok {
		return id, ExactMatch, true
	}
	if id, ok := partialMatch(lower, ids); ok {
		return id, PartialMatch, true
	}
	return "", NoMatch, false
}

// exactMatch expects ids sorted, so the first of equal length is the smallest.
func exactMatch(lower string, ids []string) (string, bool) {
	best := ""
	for _, id := range ids {
		if !strings.Contains(lower, strings.ToLower(id)) {
			continue
		}
		if best == "" || len([]rune(id)) > len([]rune(best)) {
			best = id
		}
	}
	return best, best != ""
}

func partialMatch(lower string, ids []string) (string, bool) {
	best, bestHits := "", 0
	for _, id := range ids {
		hits := windowHits(lower, strings.ToLower(id))
		if hits > bestHits {
			best, bestHits = id, hits
		}
	}
	return best, bestHits > 0
}

// windowHits counts the distinct windows of id that occur in text.
func windowHits(text, id string) int {
	runes := []rune(id)
	if len(runes) < windowSize {
		return 0
	}
	seen := make(map[string]bool)
	hits := 0
	for i := 0; i+windowSize <= len(runes); i++ {
		w := string(runes[i : i+windowSize])
		if seen[w] {
			continue
		}
		seen[w] = true
		if strings.Contains(text, w) {
			hits++
		}
	}
	return hits
}

// normalize trims, de-duplicates and sorts the catalog.
func normalize(catalog []string) []string {
	seen := make(map[string]bool, len(catalog))
	ids := make([]string, 0, len(catalog))
	for _, id := range catalog {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sampleIDs(ids []string) []string {
	if len(ids) > maxSamples {
		return append([]string(nil), ids[:maxSamples]...)
	}
	return append([]string(nil), ids...)
}

func sampleHint(ids []string) string {
	if len(ids) == 0 {
		return "No users are available."
	}
	hint := "Available users: " + strings.Join(sampleIDs(ids), ", ")
	if len(ids) > maxSamples {
		hint += "..."
	}
	return hint
}
