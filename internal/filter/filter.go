/*
Package filter narrows a RecommendationSet by score threshold and product-id substring.

A View keeps the original rank numbers; ranks are never renumbered and the input
set is never reordered or modified.
*/
package filter

import (
	"strings"

	"github.com/khanglvm/reco-hub/internal/record"
)

// Score bands used for colour-coding the final score.
const (
	highScore   = 0.7
	mediumScore = 0.4
)

// Band is a display band of a final score.
type Band string

const (
	High   Band = "high"
	Medium Band = "medium"
	Low    Band = "low"
)

// Criteria are the UI-supplied predicates. Both must hold; the substrings
// match if any one of them is contained in the product id.
type Criteria struct {
	MinScore     float64  `json:"min_score"`
	IDSubstrings []string `json:"id_substrings,omitempty"`
}

// View is the filtered subsequence of a RecommendationSet.
type View struct {
	UserID string        `json:"user_id"`
	Items  []record.Item `json:"items"`

	// Total is the effective length of the unfiltered set.
	Total int `json:"total"`
}

// Apply returns the items of set that satisfy c, in original rank order.
func Apply(set *record.RecommendationSet, c Criteria) View {
	n := set.EffectiveLength()
	view := View{UserID: set.UserID, Items: []record.Item{}, Total: n}

	subs := make([]string, 0, len(c.IDSubstrings))
	for _, s := range c.IDSubstrings {
		if s != "" {
			subs = append(subs, s)
		}
	}

	for i := 0; i < n; i++ {
		if set.FinalScore[i] < c.MinScore {
			continue
		}
		if len(subs) > 0 && !containsAny(set.RankedProducts[i], subs) {
			continue
		}
		item, _ := set.Item(i)
		view.Items = append(view.Items, item)
	}

	return view
}

// ScoreBand returns the display band of a final score.
func ScoreBand(score float64) Band {
	switch {
	case score >= highScore:
		return High
	case score >= mediumScore:
		return Medium
	default:
		return Low
	}
}

func containsAny(id string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(id, s) {
			return true
		}
	}
	return false
}
