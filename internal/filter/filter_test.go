package filter

import (
	"reflect"
	"testing"

	"github.com/khanglvm/reco-hub/internal/record"
)

func newSet(products []string, final []float64) *record.RecommendationSet {
	rf := make([]float64, len(products))
	cf := make([]float64, len(products))
	return &record.RecommendationSet{
		UserID:         "u1",
		RankedProducts: products,
		FinalScore:     final,
		RFScore:        rf,
		CFScore:        cf,
	}
}

func ranks(v View) []int {
	out := []int{}
	for _, item := range v.Items {
		out = append(out, item.Rank)
	}
	return out
}

func TestApply(t *testing.T) {
	set := newSet([]string{"10", "20", "30", "1020"}, []float64{0.8, 0.3, 0.6, 0.9})

	tests := []struct {
		name     string
		criteria Criteria
		want     []int
	}{
		{"no predicates", Criteria{}, []int{1, 2, 3, 4}},
		{"min score", Criteria{MinScore: 0.5}, []int{1, 3, 4}},
		{"inclusive threshold", Criteria{MinScore: 0.6}, []int{1, 3, 4}},
		{"substring", Criteria{IDSubstrings: []string{"20"}}, []int{2, 4}},
		{"substrings are ORed", Criteria{IDSubstrings: []string{"30", "10"}}, []int{1, 3, 4}},
		{"predicates are ANDed", Criteria{MinScore: 0.5, IDSubstrings: []string{"20"}}, []int{4}},
		{"empty substrings ignored", Criteria{IDSubstrings: []string{""}}, []int{1, 2, 3, 4}},
		{"nothing matches", Criteria{MinScore: 0.95}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranks(Apply(set, tt.criteria))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ranks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_SpecExample(t *testing.T) {
	set := newSet([]string{"10", "20", "30"}, []float64{0.8, 0.3, 0.6})

	view := Apply(set, Criteria{MinScore: 0.5})

	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(view.Items))
	}
	if view.Items[0].ProductID != "10" || view.Items[0].Rank != 1 {
		t.Errorf("unexpected first item: %+v", view.Items[0])
	}
	if view.Items[1].ProductID != "30" || view.Items[1].Rank != 3 {
		t.Errorf("unexpected second item: %+v", view.Items[1])
	}
	if view.Total != 3 {
		t.Errorf("expected total 3, got %d", view.Total)
	}
}

func TestApply_ClampsToEffectiveLength(t *testing.T) {
	set := record.Parse(record.RawRow{
		record.ColUser:         "u1",
		record.ColProducts:     "[1,2,3]",
		record.ColFinalScore:   "[0.9,0.5]",
		record.ColRFScore:      "[0.1,0.1,0.1]",
		record.ColCFScore:      "[0.1,0.1,0.1]",
		record.ColExplanations: "[]",
	})

	view := Apply(set, Criteria{})

	if got := ranks(view); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("ranks = %v, want [1 2]", got)
	}
	for _, item := range view.Items {
		if item.ProductID == "3" {
			t.Error("product 3 must be excluded")
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	set := newSet([]string{"b", "a"}, []float64{0.1, 0.9})

	Apply(set, Criteria{MinScore: 0.5})

	if !reflect.DeepEqual(set.RankedProducts, []string{"b", "a"}) {
		t.Errorf("input reordered: %v", set.RankedProducts)
	}
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{0.8, High},
		{0.7, High},
		{0.5, Medium},
		{0.4, Medium},
		{0.11, Low},
	}

	for _, tt := range tests {
		if got := ScoreBand(tt.score); got != tt.want {
			t.Errorf("ScoreBand(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
