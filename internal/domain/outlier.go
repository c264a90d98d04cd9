package domain

// FilterOutliers discards every estimate with any role strictly above its
// ceiling. Roles without a ceiling are not checked. It returns a new map and
// the number of estimates discarded; the input is not modified.
func FilterOutliers(estimates map[string]WageEstimate, ceilings map[Role]float64) (map[string]WageEstimate, int) {
	out := make(map[string]WageEstimate, len(estimates))
	removed := 0
	for ccn, est := range estimates {
		if est.Computable() && exceedsCeiling(est, ceilings) {
			out[ccn] = Unavailable(ReasonOutlier)
			removed++
			continue
		}
		out[ccn] = est
	}
	return out, removed
}

func exceedsCeiling(est WageEstimate, ceilings map[Role]float64) bool {
	for role, rate := range est.Rates {
		if ceiling, ok := ceilings[role]; ok && rate > ceiling {
			return true
		}
	}
	return false
}
