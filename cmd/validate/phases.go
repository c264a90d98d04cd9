package main

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/pipeline"
)

// ── Phase 1: Input linkage ──

func validateInputLinkage(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 1: Input Linkage"}

	if len(ds.Providers) == 0 {
		p.errorf("no providers loaded")
		return p
	}
	for _, ccn := range ds.CCNs() {
		prov := ds.Providers[ccn]
		if prov.CCN != ccn {
			p.errorf("provider keyed %s carries CCN %q", ccn, prov.CCN)
		}
		if strings.TrimSpace(prov.Name) == "" {
			p.errorf("provider %s: name is empty", ccn)
		}
		if prov.State != "" && len(prov.State) != 2 {
			p.errorf("provider %s: state %q is not 2 characters", ccn, prov.State)
		}
	}

	orphans := func(label string, ccns []string) {
		n := 0
		for _, ccn := range ccns {
			if _, ok := ds.Providers[ccn]; !ok {
				n++
			}
		}
		if n > 0 {
			p.notef("%d %s without a matching provider", n, label)
		}
	}
	orphans("cost reports", keys(ds.CostReports))
	orphans("facilities with measures", keys(ds.Measures))
	orphans("facilities with penalties", keys(ds.Penalties))
	orphans("facilities with surveys", keys(ds.Surveys))

	for ccn, c := range ds.CostReports {
		if c.CCN != ccn {
			p.errorf("cost report keyed %s carries CCN %q", ccn, c.CCN)
		}
	}
	return p
}

// ── Phase 2: Estimate invariants ──

func validateEstimates(ds domain.Dataset, estimates map[string]domain.WageEstimate, model domain.WageModel) *phase {
	p := &phase{name: "Phase 2: Estimate Invariants"}

	if len(estimates) != len(ds.Providers) {
		p.errorf("estimate count: got %d, want one per provider (%d)", len(estimates), len(ds.Providers))
	}
	for _, ccn := range sortedKeys(estimates) {
		est := estimates[ccn]
		if !est.Computable() {
			if est.Reason == "" {
				p.errorf("%s: partial estimate with no reason (%d roles)", ccn, len(est.Rates))
			} else if len(est.Rates) > 0 {
				p.errorf("%s: not computable (%s) but carries %d rates", ccn, est.Reason, len(est.Rates))
			}
			if _, ok := ds.CostReports[ccn]; !ok && est.Reason != domain.ReasonNoCostReport {
				p.errorf("%s: no cost report but reason is %s", ccn, est.Reason)
			}
			continue
		}

		for _, role := range domain.Roles {
			rate := est.Rates[role]
			if math.IsNaN(rate) || math.IsInf(rate, 0) {
				p.errorf("%s: %s rate is %v", ccn, role, rate)
				continue
			}
			if band := model.Bounds[role]; !band.Contains(rate) {
				p.errorf("%s: %s rate %.2f outside [%.2f, %.2f]", ccn, role, rate, band.Min, band.Max)
			}
		}

		minWage := model.MinWage(ds.Providers[ccn].State)
		cna := est.Rates[domain.RoleCNA]
		switch {
		case est.Floored && cna != minWage:
			p.errorf("%s: floored but CNA rate %.4f != minimum wage %.2f", ccn, cna, minWage)
		case !est.Floored && cna < minWage:
			p.errorf("%s: CNA rate %.4f below minimum wage %.2f without floor", ccn, cna, minWage)
		}
	}
	return p
}

// ── Phase 3: Outlier ceilings ──

func validateOutliers(estimates, filtered map[string]domain.WageEstimate, ceilings map[domain.Role]float64) *phase {
	p := &phase{name: "Phase 3: Outlier Ceilings"}

	removed := 0
	for _, ccn := range sortedKeys(estimates) {
		before, after := estimates[ccn], filtered[ccn]
		over := overCeiling(before, ceilings)

		switch {
		case over != "" && after.Reason != domain.ReasonOutlier:
			p.errorf("%s: %s above ceiling but kept", ccn, over)
		case over == "" && after.Reason == domain.ReasonOutlier:
			p.errorf("%s: discarded as outlier with every rate under its ceiling", ccn)
		case over == "" && before.Computable() != after.Computable():
			p.errorf("%s: computability changed by filter", ccn)
		}
		if over != "" {
			removed++
		}
	}
	if len(filtered) != len(estimates) {
		p.errorf("filter changed facility count: %d -> %d", len(estimates), len(filtered))
	}
	p.notef("%d estimates above a ceiling", removed)
	return p
}

// overCeiling returns the first role of a computable estimate above its
// ceiling, or "".
func overCeiling(est domain.WageEstimate, ceilings map[domain.Role]float64) domain.Role {
	if !est.Computable() {
		return ""
	}
	for _, role := range domain.Roles {
		if c, ok := ceilings[role]; ok && est.Rates[role] > c {
			return role
		}
	}
	return ""
}

// ── Phase 4: Region profile recomputation ──

func validateRegionProfile(ds domain.Dataset, filtered map[string]domain.WageEstimate, profile domain.RegionWageProfile) *phase {
	p := &phase{name: "Phase 4: Region Profile Recomputation"}

	observed := make(map[string]map[domain.Role][]float64)
	for ccn, est := range filtered {
		region := strings.ToUpper(strings.TrimSpace(ds.Providers[ccn].State))
		if region == "" || !est.Computable() {
			continue
		}
		if observed[region] == nil {
			observed[region] = make(map[domain.Role][]float64)
		}
		for _, role := range domain.Roles {
			observed[region][role] = append(observed[region][role], est.Rates[role])
		}
	}

	for region := range profile {
		if _, ok := observed[region]; !ok {
			p.errorf("region %s profiled with no computable facility", region)
		}
	}

	regions := make([]string, 0, len(observed))
	for r := range observed {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	for _, region := range regions {
		for _, role := range domain.Roles {
			values := observed[region][role]
			want, _ := domain.TypicalWage(values)
			got, ok := profile.Typical(region, role)
			if !ok {
				p.errorf("%s/%s: missing from profile (%d observations)", region, role, len(values))
				continue
			}
			if !floatEq(got, want) {
				p.errorf("%s/%s: typical %.4f, recomputed %.4f", region, role, got, want)
			}
			if lo, hi := slices.Min(values), slices.Max(values); got < lo || got > hi {
				p.errorf("%s/%s: typical %.4f outside observed range [%.4f, %.4f]", region, role, got, lo, hi)
			}
		}
	}
	p.notef("%d regions profiled", len(profile))
	return p
}

// ── Phase 5: wages.json parity ──

func validateWagesParity(summaries []domain.FacilitySummary, ds domain.Dataset, a *pipeline.Assembler, filtered map[string]domain.WageEstimate, profile domain.RegionWageProfile) *phase {
	p := &phase{name: "Phase 5: wages.json Parity"}

	seen := make(map[string]bool, len(summaries))
	for i, got := range summaries {
		if i > 0 && summaries[i-1].CCN >= got.CCN {
			p.errorf("entry %d (%s): not in ascending CCN order after %s", i, got.CCN, summaries[i-1].CCN)
		}
		if seen[got.CCN] {
			p.errorf("%s: duplicate entry", got.CCN)
			continue
		}
		seen[got.CCN] = true

		if _, ok := ds.Providers[got.CCN]; !ok {
			p.errorf("%s: no such provider", got.CCN)
			continue
		}
		want := domain.Summarize(a.Assemble(ds, got.CCN, filtered[got.CCN], profile))
		compareSummaries(p, want, got)
	}

	missing := 0
	for ccn := range ds.Providers {
		if !seen[ccn] {
			missing++
		}
	}
	if missing > 0 {
		p.errorf("%d providers missing from wages.json", missing)
	}
	return p
}

func compareSummaries(p *phase, want, got domain.FacilitySummary) {
	ccn := want.CCN
	if got.Name != want.Name {
		p.errorf("%s: name %q, want %q", ccn, got.Name, want.Name)
	}
	if got.State != want.State {
		p.errorf("%s: state %q, want %q", ccn, got.State, want.State)
	}
	if got.WageReason != want.WageReason {
		p.errorf("%s: wage reason %q, want %q", ccn, got.WageReason, want.WageReason)
	}
	if len(got.Wages) != len(want.Wages) {
		p.errorf("%s: %d wages, want %d", ccn, len(got.Wages), len(want.Wages))
	} else {
		for _, role := range domain.Roles {
			g, gok := got.Wages[role]
			w, wok := want.Wages[role]
			if gok != wok || !g.Equal(w) {
				p.errorf("%s: %s wage %s, want %s", ccn, role, g.StringFixed(2), w.StringFixed(2))
			}
		}
	}

	tiers := []struct {
		label     string
		got, want domain.Tier
	}{
		{"wage", got.WageTier, want.WageTier},
		{"safety", got.SafetyTier, want.SafetyTier},
		{"long-stay", got.LongStayTier, want.LongStayTier},
		{"short-stay", got.ShortStayTier, want.ShortStayTier},
	}
	for _, t := range tiers {
		if t.got != t.want {
			p.errorf("%s: %s tier %s, want %s", ccn, t.label, t.got, t.want)
		}
	}

	switch {
	case (got.SafetyScore == nil) != (want.SafetyScore == nil):
		p.errorf("%s: safety score presence mismatch", ccn)
	case got.SafetyScore != nil && !got.SafetyScore.Equal(*want.SafetyScore):
		p.errorf("%s: safety score %s, want %s", ccn, got.SafetyScore, want.SafetyScore)
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := keys(m)
	sort.Strings(out)
	return out
}
