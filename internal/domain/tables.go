package domain

import (
	"maps"
	"strings"
)

// Role is a nursing staff role with an estimated wage.
type Role string

const (
	RoleNP  Role = "np"
	RoleRN  Role = "rn"
	RoleLPN Role = "lpn"
	RoleCNA Role = "cna"
)

// Roles lists every role in display order.
var Roles = []Role{RoleNP, RoleRN, RoleLPN, RoleCNA}

// Label returns the display label for a role.
func (r Role) Label() string {
	switch r {
	case RoleNP:
		return "Nurse Practitioner"
	case RoleRN:
		return "Registered Nurse"
	case RoleLPN:
		return "Licensed Practical Nurse"
	case RoleCNA:
		return "Certified Nursing Assistant"
	default:
		return string(r)
	}
}

// Band is an inclusive [Min, Max] interval.
type Band struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// WageModel holds every constant the wage estimator depends on.
type WageModel struct {
	NursingShare       float64            `yaml:"nursing_share"`
	ExtenderDailyHours float64            `yaml:"extender_daily_hours"`
	Weights            map[Role]float64   `yaml:"weights"`
	Bounds             map[Role]Band      `yaml:"bounds"`
	Ceilings           map[Role]float64   `yaml:"ceilings"`
	MinWages           map[string]float64 `yaml:"min_wages"`
	DefaultMinWage     float64            `yaml:"default_min_wage"`
}

// MinWage returns the statutory minimum wage for a region, or the default
// when the region is unknown.
func (m WageModel) MinWage(region string) float64 {
	if w, ok := m.MinWages[strings.ToUpper(strings.TrimSpace(region))]; ok {
		return w
	}
	return m.DefaultMinWage
}

var (
	defaultWeights = map[Role]float64{
		RoleNP:  3.0,
		RoleRN:  2.2,
		RoleLPN: 1.4,
		RoleCNA: 0.7,
	}

	defaultBounds = map[Role]Band{
		RoleNP:  {Min: 20, Max: 250},
		RoleRN:  {Min: 15, Max: 180},
		RoleLPN: {Min: 8, Max: 120},
		RoleCNA: {Min: 5, Max: 60},
	}

	// Upper IQR fences from the 2024 cost report population.
	defaultCeilings = map[Role]float64{
		RoleNP:  172.08,
		RoleRN:  126.20,
		RoleLPN: 80.32,
		RoleCNA: 36.12,
	}

	// State minimum wages, 2025 snapshot.
	defaultMinWages = map[string]float64{
		"AL": 7.25, "AK": 11.91, "AZ": 14.70, "AR": 11.00, "CA": 16.50,
		"CO": 14.81, "CT": 16.35, "DE": 15.00, "DC": 17.50, "FL": 13.00,
		"GA": 7.25, "HI": 14.00, "ID": 7.25, "IL": 15.00, "IN": 7.25,
		"IA": 7.25, "KS": 7.25, "KY": 7.25, "LA": 7.25, "ME": 14.65,
		"MD": 15.00, "MA": 15.00, "MI": 10.56, "MN": 11.13, "MS": 7.25,
		"MO": 13.75, "MT": 10.55, "NE": 13.50, "NV": 12.00, "NH": 7.25,
		"NJ": 15.49, "NM": 12.00, "NY": 15.50, "NC": 7.25, "ND": 7.25,
		"OH": 10.70, "OK": 7.25, "OR": 14.70, "PA": 7.25, "RI": 15.00,
		"SC": 7.25, "SD": 11.50, "TN": 7.25, "TX": 7.25, "UT": 7.25,
		"VT": 14.01, "VA": 12.41, "WA": 16.66, "WV": 8.75, "WI": 7.25,
		"WY": 7.25,
	}
)

// DefaultWageModel returns the built-in wage model. Maps are fresh copies.
func DefaultWageModel() WageModel {
	return WageModel{
		NursingShare:       0.72,
		ExtenderDailyHours: 8.0,
		Weights:            maps.Clone(defaultWeights),
		Bounds:             maps.Clone(defaultBounds),
		Ceilings:           maps.Clone(defaultCeilings),
		MinWages:           maps.Clone(defaultMinWages),
		DefaultMinWage:     7.25,
	}
}

// Breakpoints are the four cut points between the five tiers, best first.
type Breakpoints struct {
	Great float64 `yaml:"great"`
	Good  float64 `yaml:"good"`
	Mid   float64 `yaml:"mid"`
	Warn  float64 `yaml:"warn"`
}

// AtLeast buckets a value where higher is better.
func (b Breakpoints) AtLeast(v float64) Tier {
	switch {
	case v >= b.Great:
		return TierGreat
	case v >= b.Good:
		return TierGood
	case v >= b.Mid:
		return TierMid
	case v >= b.Warn:
		return TierWarn
	default:
		return TierBad
	}
}

// AtMost buckets a value where lower is better.
func (b Breakpoints) AtMost(v float64) Tier {
	switch {
	case v <= b.Great:
		return TierGreat
	case v <= b.Good:
		return TierGood
	case v <= b.Mid:
		return TierMid
	case v <= b.Warn:
		return TierWarn
	default:
		return TierBad
	}
}

// SafetyPenalties are the per-unit score deductions for each safety metric.
type SafetyPenalties struct {
	Cycle1Deficiency float64 `yaml:"cycle1_deficiency"`
	Cycle2Deficiency float64 `yaml:"cycle2_deficiency"`
	Complaint        float64 `yaml:"complaint"`
	Incident         float64 `yaml:"incident"`
	Penalty          float64 `yaml:"penalty"`
	FinedScore       float64 `yaml:"fined_score"`
}

// Thresholds groups every classification table.
type Thresholds struct {
	Wage          Breakpoints     `yaml:"wage"`
	Section       Breakpoints     `yaml:"section"`
	MeasureHigher Breakpoints     `yaml:"measure_higher"`
	MeasureLower  Breakpoints     `yaml:"measure_lower"`
	Safety        SafetyPenalties `yaml:"safety"`
}

// DefaultThresholds returns the built-in classification tables.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Wage:          Breakpoints{Great: 15, Good: 5, Mid: -5, Warn: -15},
		Section:       Breakpoints{Great: 85, Good: 70, Mid: 55, Warn: 40},
		MeasureHigher: Breakpoints{Great: 90, Good: 75, Mid: 60, Warn: 40},
		MeasureLower:  Breakpoints{Great: 2, Good: 5, Mid: 10, Warn: 20},
		Safety: SafetyPenalties{
			Cycle1Deficiency: 5,
			Cycle2Deficiency: 5,
			Complaint:        10,
			Incident:         10,
			Penalty:          15,
			FinedScore:       30,
		},
	}
}

// Tables is the full set of overridable constants.
type Tables struct {
	Wages WageModel  `yaml:"wages"`
	Tiers Thresholds `yaml:"tiers"`
}

// DefaultTables returns the built-in wage model and thresholds.
func DefaultTables() Tables {
	return Tables{Wages: DefaultWageModel(), Tiers: DefaultThresholds()}
}

// Region trimming.
const (
	minTrimObservations = 5
	fenceMultiplier     = 1.5
)

// Quality measure direction keywords, matched case-insensitively.
var (
	ambiguousKeywords = []string{
		"medication", "antipsychotic", "antianxiety", "anti-anxiety", "hypnotic",
	}
	lowerIsBetterKeywords = []string{
		"fall", "pressure ulcer", "pressure injur", "urinary tract infection",
		"catheter", "restrain", "lose too much weight", "depress", "pain",
		"emergency department", "rehospitaliz", "re-hospitaliz", "hospitalization",
		"worsen", "increased", "incontinen", "outpatient emergency",
		"bowels or bladder", "lose control",
	}
	higherIsBetterKeywords = []string{
		"vaccin", "improv", "able to", "independen", "discharge to community",
		"returned home", "return to home", "functional", "appropriate",
	}
)
