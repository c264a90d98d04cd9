package domain

import (
	"slices"
	"strings"
)

// RegionWageProfile maps a region code to the typical wage per role.
type RegionWageProfile map[string]map[Role]float64

// Typical returns the typical wage for a role in a region.
func (p RegionWageProfile) Typical(region string, role Role) (float64, bool) {
	v, ok := p[strings.ToUpper(region)][role]
	return v, ok
}

// BuildRegionProfile computes the typical wage per role per region over all
// computable estimates. regions maps CCN to region code; facilities without
// a region are skipped.
func BuildRegionProfile(estimates map[string]WageEstimate, regions map[string]string) RegionWageProfile {
	observed := make(map[string]map[Role][]float64)
	for ccn, est := range estimates {
		region := strings.ToUpper(strings.TrimSpace(regions[ccn]))
		if region == "" || !est.Computable() {
			continue
		}
		byRole, ok := observed[region]
		if !ok {
			byRole = make(map[Role][]float64, len(Roles))
			observed[region] = byRole
		}
		for _, role := range Roles {
			byRole[role] = append(byRole[role], est.Rates[role])
		}
	}

	profile := make(RegionWageProfile, len(observed))
	for region, byRole := range observed {
		typical := make(map[Role]float64, len(byRole))
		for role, values := range byRole {
			if v, ok := TypicalWage(values); ok {
				typical[role] = v
			}
		}
		profile[region] = typical
	}
	return profile
}

// TypicalWage returns the IQR-trimmed median of values. With fewer than five
// values it returns the plain median. Quartiles are read by index without
// interpolation. If trimming removes every value, the untrimmed median is
// returned.
func TypicalWage(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n < minTrimObservations {
		return median(sorted), true
	}

	q1 := sorted[n/4]
	q3 := sorted[(3*n)/4]
	iqr := q3 - q1
	lo, hi := q1-fenceMultiplier*iqr, q3+fenceMultiplier*iqr

	kept := make([]float64, 0, n)
	for _, v := range sorted {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return median(sorted), true
	}
	return median(kept), true
}

// median of an already sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
