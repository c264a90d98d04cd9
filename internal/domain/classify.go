package domain

import "math"

// WageTiers compares a facility's wages with its region's typical wages.
// Differences are signed percentages.
type WageTiers struct {
	Roles       map[Role]Tier    `json:"roles,omitempty"`
	Differences map[Role]float64 `json:"differences,omitempty"`
	Section     Tier             `json:"section"`
}

// ClassifyWages tiers each role against the region's typical wage. Roles
// without a usable baseline get no tier.
func (t Thresholds) ClassifyWages(est WageEstimate, region string, profile RegionWageProfile) WageTiers {
	out := WageTiers{}
	if !est.Computable() {
		return out
	}
	out.Roles = make(map[Role]Tier, len(Roles))
	out.Differences = make(map[Role]float64, len(Roles))

	var scores []float64
	for _, role := range Roles {
		typical, ok := profile.Typical(region, role)
		if !ok || typical <= 0 {
			continue
		}
		diff := (est.Rates[role] - typical) / typical * 100
		tier := t.Wage.AtLeast(diff)
		out.Roles[role] = tier
		out.Differences[role] = diff
		if s, ok := tier.Score(); ok {
			scores = append(scores, s)
		}
	}
	out.Section = t.sectionTier(scores)
	return out
}

// SafetyMetric names a count-based safety metric.
type SafetyMetric string

const (
	MetricCycle1Deficiencies SafetyMetric = "cycle1_deficiencies"
	MetricCycle2Deficiencies SafetyMetric = "cycle2_deficiencies"
	MetricComplaints         SafetyMetric = "complaints"
	MetricIncidents          SafetyMetric = "incidents"
	MetricPenalties          SafetyMetric = "penalties"
	MetricFines              SafetyMetric = "fines"
)

// MetricScore is one scored safety metric.
type MetricScore struct {
	Metric SafetyMetric `json:"metric"`
	Count  float64      `json:"count"`
	Score  float64      `json:"score"`
	Tier   Tier         `json:"tier"`
}

// SafetyTiers is the scored safety section. Score is meaningful only when
// Section is not TierNone.
type SafetyTiers struct {
	Metrics []MetricScore `json:"metrics,omitempty"`
	Score   float64       `json:"score"`
	Section Tier          `json:"section"`
}

// ClassifySafety scores each reported safety metric 0-100 and averages the
// available scores into a section tier.
func (t Thresholds) ClassifySafety(p Provider) SafetyTiers {
	perUnit := []struct {
		metric  SafetyMetric
		count   *float64
		penalty float64
	}{
		{MetricCycle1Deficiencies, p.Cycle1Deficiencies, t.Safety.Cycle1Deficiency},
		{MetricCycle2Deficiencies, p.Cycle2Deficiencies, t.Safety.Cycle2Deficiency},
		{MetricComplaints, p.Complaints, t.Safety.Complaint},
		{MetricIncidents, p.Incidents, t.Safety.Incident},
		{MetricPenalties, p.TotalPenalties, t.Safety.Penalty},
	}

	var out SafetyTiers
	var scores []float64
	add := func(metric SafetyMetric, count, score float64) {
		score = clampScore(score)
		out.Metrics = append(out.Metrics, MetricScore{
			Metric: metric,
			Count:  count,
			Score:  score,
			Tier:   t.Section.AtLeast(score),
		})
		scores = append(scores, score)
	}

	for _, m := range perUnit {
		if m.count == nil {
			continue
		}
		add(m.metric, *m.count, 100-m.penalty*(*m.count))
	}
	if p.Fines != nil {
		score := 100.0
		if *p.Fines > 0 {
			score = t.Safety.FinedScore
		}
		add(MetricFines, *p.Fines, score)
	}

	if avg, ok := mean(scores); ok {
		out.Score = avg
		out.Section = t.Section.AtLeast(avg)
	}
	return out
}

// sectionTier averages tier scores and buckets the result.
func (t Thresholds) sectionTier(scores []float64) Tier {
	avg, ok := mean(scores)
	if !ok {
		return TierNone
	}
	return t.Section.AtLeast(avg)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
