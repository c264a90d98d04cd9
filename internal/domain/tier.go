package domain

import "fmt"

// Tier is an ordered presentation level. The zero value means no tier.
type Tier int

const (
	TierNone Tier = iota
	TierBad
	TierWarn
	TierMid
	TierGood
	TierGreat
)

var tierNames = map[Tier]string{
	TierNone:  "",
	TierBad:   "bad",
	TierWarn:  "warn",
	TierMid:   "mid",
	TierGood:  "good",
	TierGreat: "great",
}

// String returns the CSS class suffix for the tier.
func (t Tier) String() string {
	return tierNames[t]
}

// Score returns the numeric score used when averaging tiers.
func (t Tier) Score() (float64, bool) {
	switch t {
	case TierGreat:
		return 100, true
	case TierGood:
		return 80, true
	case TierMid:
		return 60, true
	case TierWarn:
		return 40, true
	case TierBad:
		return 20, true
	default:
		return 0, false
	}
}

// ParseTier converts a tier name back into a Tier.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// mean averages the values, reporting false when there are none.
func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
