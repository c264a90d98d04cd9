package domain

import "strings"

// Direction says which way a quality measure score should move.
type Direction int

const (
	// Ambiguous measures, and measures matching no keyword, get no tier.
	Ambiguous Direction = iota
	HigherIsBetter
	LowerIsBetter
)

// String returns "higher", "lower", or "" for ambiguous.
func (d Direction) String() string {
	switch d {
	case HigherIsBetter:
		return "higher"
	case LowerIsBetter:
		return "lower"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MeasureDirection infers the desirable direction from a measure
// description. Ambiguous keywords win over lower, lower over higher.
func MeasureDirection(description string) Direction {
	desc := strings.ToLower(description)
	switch {
	case containsAny(desc, ambiguousKeywords):
		return Ambiguous
	case containsAny(desc, lowerIsBetterKeywords):
		return LowerIsBetter
	case containsAny(desc, higherIsBetterKeywords):
		return HigherIsBetter
	default:
		return Ambiguous
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// MeasureTier is a classified quality measure.
type MeasureTier struct {
	Measure   QualityMeasure `json:"measure"`
	Direction Direction      `json:"direction"`
	Score     *float64       `json:"score,omitempty"`
	Tier      Tier           `json:"tier"`
}

// MeasureTable is a classified set of measures for one resident type.
type MeasureTable struct {
	Measures []MeasureTier `json:"measures,omitempty"`
	Score    float64       `json:"score"`
	Section  Tier          `json:"section"`
}

// ClassifyMeasure tiers a single measure by its direction.
func (t Thresholds) ClassifyMeasure(m QualityMeasure) MeasureTier {
	out := MeasureTier{Measure: m, Direction: MeasureDirection(m.Description)}
	score, ok := m.Score()
	if !ok {
		return out
	}
	out.Score = &score
	switch out.Direction {
	case HigherIsBetter:
		out.Tier = t.MeasureHigher.AtLeast(score)
	case LowerIsBetter:
		out.Tier = t.MeasureLower.AtMost(score)
	}
	return out
}

// ClassifyMeasures tiers every measure and derives the table tier. Lower is
// better scores are inverted (100 - score) before averaging.
func (t Thresholds) ClassifyMeasures(measures []QualityMeasure) MeasureTable {
	var out MeasureTable
	var normalized []float64
	for _, m := range measures {
		mt := t.ClassifyMeasure(m)
		out.Measures = append(out.Measures, mt)
		if mt.Score == nil {
			continue
		}
		switch mt.Direction {
		case HigherIsBetter:
			normalized = append(normalized, *mt.Score)
		case LowerIsBetter:
			normalized = append(normalized, 100-*mt.Score)
		}
	}
	if avg, ok := mean(normalized); ok {
		out.Score = avg
		out.Section = t.Section.AtLeast(avg)
	}
	return out
}
