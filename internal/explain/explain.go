/*
Package explain looks up the feature impacts behind a recommended product.

Entries are returned in payload order. Impacts are never re-sorted: the model that
produced the payload already ordered them.
*/
package explain

import "github.com/khanglvm/reco-hub/internal/record"

// DefaultTopN is how many features the dashboard shows per product.
const DefaultTopN = 3

// Band thresholds for colour-coding an impact.
const (
	strongImpact   = 0.02
	moderateImpact = 0.01
)

// Band classifies how much a feature contributed.
type Band string

const (
	Strong   Band = "strong"
	Moderate Band = "moderate"
	Weak     Band = "weak"
)

// Explain returns the first topN feature impacts recorded for product.
// topN <= 0 returns all of them. A product without an entry yields an empty slice.
func Explain(payload record.Explanations, product string, topN int) []record.FeatureImpact {
	impacts, ok := payload[product]
	if !ok || len(impacts) == 0 {
		return []record.FeatureImpact{}
	}
	if topN <= 0 || topN > len(impacts) {
		topN = len(impacts)
	}

	out := make([]record.FeatureImpact, topN)
	copy(out, impacts[:topN])
	return out
}

// ImpactBand returns the display band of an impact value.
func ImpactBand(impact float64) Band {
	switch {
	case impact > strongImpact:
		return Strong
	case impact > moderateImpact:
		return Moderate
	default:
		return Weak
	}
}
