package domain

import "sort"

// Provider is one facility from the CMS provider info dataset. Optional
// numeric fields are nil when the source value is blank or malformed.
type Provider struct {
	CCN       string   `json:"ccn"`
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	ZIP       string   `json:"zip,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Ownership string   `json:"ownership,omitempty"`
	Beds      *float64 `json:"beds,omitempty"`

	OverallRating   *float64 `json:"overall_rating,omitempty"`
	HealthRating    *float64 `json:"health_rating,omitempty"`
	QualityRating   *float64 `json:"quality_rating,omitempty"`
	StaffingRating  *float64 `json:"staffing_rating,omitempty"`
	AbuseIcon       bool     `json:"abuse_icon,omitempty"`
	AcceptsMedicare bool     `json:"accepts_medicare,omitempty"`
	AcceptsMedicaid bool     `json:"accepts_medicaid,omitempty"`

	// Staffing, in hours per resident per day.
	AvgResidents    *float64 `json:"avg_residents,omitempty"`
	RNHours         *float64 `json:"rn_hours,omitempty"`
	LPNHours        *float64 `json:"lpn_hours,omitempty"`
	AideHours       *float64 `json:"aide_hours,omitempty"`
	TotalNurseHours *float64 `json:"total_nurse_hours,omitempty"`
	Turnover        *float64 `json:"turnover,omitempty"`
	RNTurnover      *float64 `json:"rn_turnover,omitempty"`

	// Safety counts.
	Cycle1Deficiencies *float64 `json:"cycle1_deficiencies,omitempty"`
	Cycle2Deficiencies *float64 `json:"cycle2_deficiencies,omitempty"`
	Complaints         *float64 `json:"complaints,omitempty"`
	Incidents          *float64 `json:"incidents,omitempty"`
	Fines              *float64 `json:"fines,omitempty"`
	FineDollars        *float64 `json:"fine_dollars,omitempty"`
	PaymentDenials     *float64 `json:"payment_denials,omitempty"`
	TotalPenalties     *float64 `json:"total_penalties,omitempty"`
}

// CostReport holds the salary figures from the SNF cost report.
type CostReport struct {
	CCN           string   `json:"ccn"`
	TotalSalaries *float64 `json:"total_salaries,omitempty"`
	ContractLabor *float64 `json:"contract_labor,omitempty"`
}

// QualityMeasure is one MDS quality measure. Scores are percentages and
// Quarters[0] is Q1.
type QualityMeasure struct {
	CCN          string      `json:"ccn"`
	Code         string      `json:"code"`
	Description  string      `json:"description"`
	ResidentType string      `json:"resident_type"`
	Quarters     [4]*float64 `json:"quarters"`
	FourQuarter  *float64    `json:"four_quarter,omitempty"`
	UsedInRating bool        `json:"used_in_rating,omitempty"`
}

// Score is the four-quarter average, or the most recent reported quarter.
func (m QualityMeasure) Score() (float64, bool) {
	if m.FourQuarter != nil {
		return *m.FourQuarter, true
	}
	for i := len(m.Quarters) - 1; i >= 0; i-- {
		if m.Quarters[i] != nil {
			return *m.Quarters[i], true
		}
	}
	return 0, false
}

// Penalty is one enforcement action against a facility.
type Penalty struct {
	CCN              string   `json:"ccn"`
	Date             string   `json:"date"`
	Type             string   `json:"type"`
	FineAmount       *float64 `json:"fine_amount,omitempty"`
	DenialStart      string   `json:"denial_start,omitempty"`
	DenialLengthDays *float64 `json:"denial_length_days,omitempty"`
}

// Survey summarizes one standard inspection cycle.
type Survey struct {
	CCN                  string   `json:"ccn"`
	Cycle                int      `json:"cycle"`
	Date                 string   `json:"date"`
	HealthDeficiencies   *float64 `json:"health_deficiencies,omitempty"`
	FireSafetyDeficiency *float64 `json:"fire_safety_deficiencies,omitempty"`
}

// Dataset is every record of one generation run, keyed by CCN.
type Dataset struct {
	Providers   map[string]Provider
	CostReports map[string]CostReport
	Measures    map[string][]QualityMeasure
	Penalties   map[string][]Penalty
	Surveys     map[string][]Survey
}

// CCNs returns provider CCNs in ascending order.
func (d Dataset) CCNs() []string {
	ccns := make([]string, 0, len(d.Providers))
	for ccn := range d.Providers {
		ccns = append(ccns, ccn)
	}
	sort.Strings(ccns)
	return ccns
}
