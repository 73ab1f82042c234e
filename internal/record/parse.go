package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/khanglvm/reco-hub/internal/literal"
)

// Parse decodes a raw row. It never fails; problems are collected in Warnings.
func Parse(raw RawRow) *RecommendationSet {
	set := &RecommendationSet{
		UserID:         strings.TrimSpace(raw[ColUser]),
		RankedProducts: []string{},
		FinalScore:     []float64{},
		RFScore:        []float64{},
		CFScore:        []float64{},
		VisitedStudies: []string{},
		Explanations:   Explanations{},
	}
	if set.UserID == "" {
		set.warn(ColUser, MalformedField, "missing user id")
	}

	if ids, err := decodeIDs(raw, ColProducts); err != nil {
		set.warn(ColProducts, MalformedField, err.Error())
	} else {
		set.RankedProducts = ids
	}

	set.FinalScore = set.decodeScores(raw, ColFinalScore)
	set.RFScore = set.decodeScores(raw, ColRFScore)
	set.CFScore = set.decodeScores(raw, ColCFScore)

	if ids, err := decodeIDs(raw, ColVisitedStudies); err != nil {
		set.warn(ColVisitedStudies, MalformedField, err.Error())
	} else {
		set.VisitedStudies = ids
	}

	if exp, err := decodeExplanations(raw); err != nil {
		set.warn(ColExplanations, MalformedField, err.Error())
	} else {
		set.Explanations = exp
	}

	if set.Mismatch() {
		set.warn(ColProducts, LengthMismatch, fmt.Sprintf(
			"products=%d final=%d rf=%d cf=%d, using %d",
			len(set.RankedProducts), len(set.FinalScore), len(set.RFScore), len(set.CFScore),
			set.EffectiveLength(),
		))
	}

	return set
}

func (s *RecommendationSet) warn(field string, kind WarningKind, detail string) {
	s.Warnings = append(s.Warnings, FieldWarning{Field: field, Kind: kind, Detail: detail})
}

func (s *RecommendationSet) decodeScores(raw RawRow, col string) []float64 {
	items, err := decodeList(raw, col)
	if err != nil {
		s.warn(col, MalformedField, err.Error())
		return []float64{}
	}

	scores := make([]float64, 0, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			s.warn(col, MalformedField, fmt.Sprintf("element %d is %T, not a number", i, item))
			return []float64{}
		}
		scores = append(scores, f)
	}

	for i, f := range scores {
		if f < 0 || f > 1 {
			s.warn(col, OutOfRange, fmt.Sprintf("element %d = %g", i, f))
			break
		}
	}
	return scores
}

func decodeList(raw RawRow, col string) ([]any, error) {
	text, ok := raw[col]
	if !ok {
		return nil, fmt.Errorf("column missing")
	}
	v, err := literal.Parse(text)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a sequence, got %s", typeName(v))
	}
	return items, nil
}

func decodeIDs(raw RawRow, col string) ([]string, error) {
	items, err := decodeList(raw, col)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for i, item := range items {
		id, ok := CanonicalID(item)
		if !ok {
			return nil, fmt.Errorf("element %d is %s, not an id", i, typeName(item))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeExplanations accepts a list of {product: [impact, ...]} dicts or a single dict.
// The first dict that mentions a product wins.
func decodeExplanations(raw RawRow) (Explanations, error) {
	text, ok := raw[ColExplanations]
	if !ok {
		return nil, fmt.Errorf("column missing")
	}
	v, err := literal.Parse(text)
	if err != nil {
		return nil, err
	}

	var dicts []literal.Dict
	switch payload := v.(type) {
	case literal.Dict:
		dicts = []literal.Dict{payload}
	case []any:
		for i, item := range payload {
			d, ok := item.(literal.Dict)
			if !ok {
				return nil, fmt.Errorf("element %d is %s, not a mapping", i, typeName(item))
			}
			dicts = append(dicts, d)
		}
	default:
		return nil, fmt.Errorf("expected a sequence of mappings, got %s", typeName(v))
	}

	exp := Explanations{}
	for _, d := range dicts {
		for _, pair := range d {
			product, ok := CanonicalID(pair.Key)
			if !ok {
				return nil, fmt.Errorf("explanation key %s is not an id", typeName(pair.Key))
			}
			if _, seen := exp[product]; seen {
				continue
			}
			impacts, err := decodeImpacts(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", product, err)
			}
			exp[product] = impacts
		}
	}
	return exp, nil
}

func decodeImpacts(v any) ([]FeatureImpact, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a sequence of features, got %s", typeName(v))
	}
	impacts := make([]FeatureImpact, 0, len(items))
	for i, item := range items {
		d, ok := item.(literal.Dict)
		if !ok {
			return nil, fmt.Errorf("feature %d is %s, not a mapping", i, typeName(item))
		}
		fi := FeatureImpact{Feature: "Unknown"}
		if name, ok := d.Get("feature"); ok {
			if s, ok := name.(string); ok {
				fi.Feature = s
			}
		}
		if val, ok := d.Get("value"); ok {
			fi.Value, _ = toFloat(val)
		}
		if imp, ok := d.Get("impact"); ok {
			fi.Impact, _ = toFloat(imp)
		}
		impacts = append(impacts, fi)
	}
	return impacts, nil
}

// CanonicalID renders a decoded product or study id as a string. Integral
// numbers lose any fractional part so 152415 and 152415.0 name the same product.
func CanonicalID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case int64:
		return strconv.FormatInt(id, 10), true
	case float64:
		if math.IsInf(id, 0) {
			return "", false
		}
		if id == math.Trunc(id) && math.Abs(id) < 1e15 {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'g', -1, 64), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "sequence"
	case literal.Dict:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
