/*
Package record turns one user's raw recommendation row into a RecommendationSet.

A row carries a user id plus literal-encoded columns: the ranked product list,
three index-aligned score series, the visited studies and the explanation payload.
Each column is decoded on its own. A column that fails to decode becomes empty and
is reported as a FieldWarning; parsing a row never fails as a whole.
*/
package record

import "fmt"

// Column names of the recommendation table.
const (
	ColUser           = "MUDID"
	ColProducts       = "Recommended_Product"
	ColFinalScore     = "Final_Score"
	ColRFScore        = "RF_Score"
	ColCFScore        = "CF_Score"
	ColVisitedStudies = "Visited_Studies"
	ColExplanations   = "SHAP"
)

// Columns lists the table columns in their canonical order.
var Columns = []string{
	ColUser,
	ColProducts,
	ColFinalScore,
	ColRFScore,
	ColCFScore,
	ColVisitedStudies,
	ColExplanations,
}

// RawRow is one undecoded table row keyed by column name.
type RawRow map[string]string

// WarningKind classifies a non-fatal parse problem.
type WarningKind string

const (
	// MalformedField means the column did not decode to the expected shape
	// and was replaced by an empty value.
	MalformedField WarningKind = "malformed_field"

	// LengthMismatch means the product and score series differ in length.
	// Consumers must stay within EffectiveLength.
	LengthMismatch WarningKind = "length_mismatch"

	// OutOfRange means a score lies outside [0,1]. The value is kept.
	OutOfRange WarningKind = "out_of_range"
)

// FieldWarning reports a recovered problem in one column.
type FieldWarning struct {
	Field  string      `json:"field"`
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Field, w.Kind, w.Detail)
}

// FeatureImpact is one entry of a product's explanation.
type FeatureImpact struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Impact  float64 `json:"impact"`
}

// Explanations maps a product id to its feature impacts in payload order.
type Explanations map[string][]FeatureImpact

// RecommendationSet is the parsed, read-only recommendation bundle of one user.
type RecommendationSet struct {
	UserID         string         `json:"user_id"`
	RankedProducts []string       `json:"ranked_products"`
	FinalScore     []float64      `json:"final_score"`
	RFScore        []float64      `json:"rf_score"`
	CFScore        []float64      `json:"cf_score"`
	VisitedStudies []string       `json:"visited_studies"`
	Explanations   Explanations   `json:"explanations"`
	Warnings       []FieldWarning `json:"warnings,omitempty"`
}

// Item is one aligned position of a RecommendationSet.
type Item struct {
	// Rank is the 1-based position in the original ranking.
	Rank       int     `json:"rank"`
	ProductID  string  `json:"product_id"`
	FinalScore float64 `json:"final_score"`
	RFScore    float64 `json:"rf_score"`
	CFScore    float64 `json:"cf_score"`
}

// EffectiveLength is the number of positions where products and all three
// score series are present.
func (s *RecommendationSet) EffectiveLength() int {
	return min(len(s.RankedProducts), len(s.FinalScore), len(s.RFScore), len(s.CFScore))
}

// Mismatch reports whether the four aligned series differ in length.
func (s *RecommendationSet) Mismatch() bool {
	n := len(s.RankedProducts)
	return len(s.FinalScore) != n || len(s.RFScore) != n || len(s.CFScore) != n
}

// Item returns the aligned entry at index i, or false past EffectiveLength.
func (s *RecommendationSet) Item(i int) (Item, bool) {
	if i < 0 || i >= s.EffectiveLength() {
		return Item{}, false
	}
	return Item{
		Rank:       i + 1,
		ProductID:  s.RankedProducts[i],
		FinalScore: s.FinalScore[i],
		RFScore:    s.RFScore[i],
		CFScore:    s.CFScore[i],
	}, true
}

// Items returns every aligned entry up to EffectiveLength.
func (s *RecommendationSet) Items() []Item {
	n := s.EffectiveLength()
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		item, _ := s.Item(i)
		items = append(items, item)
	}
	return items
}

// HasWarning reports whether a warning of the given kind was raised for field.
func (s *RecommendationSet) HasWarning(field string, kind WarningKind) bool {
	for _, w := range s.Warnings {
		if w.Field == field && w.Kind == kind {
			return true
		}
	}
	return false
}
