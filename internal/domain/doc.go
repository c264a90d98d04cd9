// Package domain models CMS nursing-home data and derives the wage estimates
// and presentation tiers shown on each facility page.
//
// # Data Sources
//
// Records come from the CMS Care Compare nursing-home datasets (provider info,
// MDS quality measures, penalties, survey summaries) and the annual Skilled
// Nursing Facility cost report. All datasets share the CMS Certification
// Number (CCN) as facility key. Not every provider has a cost report.
//
// Numeric CSV values are parsed leniently: thousands separators, dollar and
// percent signs are stripped; blank or malformed values are missing, never
// zero. See [ParseNumber].
//
// # Wage Estimation
//
// CMS reports nursing salaries only in aggregate, so per-role hourly wages
// are modeled:
//
//	net salary      = total adjusted salaries - contract labor
//	nursing budget  = net salary * 0.72
//	annual hours    = hours per resident-day * census * 365   (per role)
//	weighted hours  = sum(annual hours * role weight)
//	base wage       = nursing budget / weighted hours
//	role wage       = base wage * role weight
//
// Role weights are NP 3.0, RN 2.2, LPN 1.4, CNA 0.7. Nurse practitioner
// hours are not reported; one 8-hour shift per facility-day is assumed.
//
// When the aide wage falls below the state minimum wage it is clamped to the
// minimum and the remaining budget is redistributed over NP, RN and LPN by
// the same weighted method.
//
// An estimate is all-or-nothing. Any role outside its plausibility band
// (see [DefaultWageModel]) makes the whole facility "not computable", and a
// second population pass ([FilterOutliers]) discards estimates with any role
// above its fixed statistical ceiling. Failures are data: a [WageEstimate]
// carries a [Reason] instead of an error.
//
// # State Baselines
//
// [TypicalWage] computes an IQR-trimmed median per role per state. Quartiles
// are taken by index (sorted[n/4], sorted[3n/4]) without interpolation, and
// fewer than five observations fall back to the plain median.
//
// # Tiers
//
// Tiers are five ordered levels (great, good, mid, warn, bad) used only to
// color page sections:
//
//	Wages:    % vs state typical  >=+15 great | >=+5 good | >=-5 mid | >=-15 warn | bad
//	Sections: score 0-100         >=85 great  | >=70 good | >=55 mid | >=40 warn  | bad
//
// Quality measures are classified by direction from their description:
// higher-is-better, lower-is-better, or ambiguous (medication measures),
// which receive no tier. Missing input always yields [TierNone].
package domain
