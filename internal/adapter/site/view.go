package site

import (
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

var reasonText = map[domain.Reason]string{
	domain.ReasonNoCostReport:   "No SNF cost report is on file for this facility.",
	domain.ReasonMissingInput:   "The cost report or staffing data needed for an estimate is incomplete.",
	domain.ReasonNoCensus:       "The facility reported no average resident census.",
	domain.ReasonNoNetSalary:    "Contract labor meets or exceeds reported salaries.",
	domain.ReasonNoStaffHours:   "The facility reported no nursing staff hours.",
	domain.ReasonFloorExhausted: "Reported salaries cannot cover the regional minimum wage for every role.",
	domain.ReasonOutOfBounds:    "Modeled wages fall outside plausible ranges for at least one role.",
	domain.ReasonOutlier:        "Modeled wages are statistical outliers against the national population.",
}

var metricText = map[domain.SafetyMetric]string{
	domain.MetricCycle1Deficiencies: "Health Deficiencies (Cycle 1)",
	domain.MetricCycle2Deficiencies: "Health Deficiencies (Cycles 2/3)",
	domain.MetricComplaints:         "Substantiated Complaints",
	domain.MetricIncidents:          "Facility-Reported Incidents",
	domain.MetricPenalties:          "Total Penalties",
	domain.MetricFines:              "Fines",
}

type wageCard struct {
	Role  string
	Rate  string
	Tier  string
	Delta string
}

type stat struct {
	Label string
	Value string
	Tier  string
}

type facilityView struct {
	Page         domain.FacilityPage
	Canonical    string
	SiteURL      string
	Location     string
	Ratings      []stat
	Staffing     []stat
	Info         []stat
	Wages        []wageCard
	WageNote     string
	Safety       []stat
	SafetyScore  string
	Schemas      []template.JS
	LastModified string
}

func newFacilityView(page domain.FacilityPage, siteURL string) (facilityView, error) {
	p := page.Provider
	v := facilityView{
		Page:         page,
		Canonical:    facilityURL(siteURL, p.CCN),
		SiteURL:      siteURL,
		Location:     location(p),
		LastModified: page.GeneratedAt.Format("2006-01-02"),
	}

	v.Ratings = []stat{
		{Label: "Overall", Value: rating(p.OverallRating)},
		{Label: "Health Inspection", Value: rating(p.HealthRating)},
		{Label: "Quality Measures", Value: rating(p.QualityRating)},
		{Label: "Staffing", Value: rating(p.StaffingRating)},
	}
	v.Staffing = []stat{
		{Label: "Avg. Residents per Day", Value: number(p.AvgResidents, 1)},
		{Label: "RN Hours / Resident / Day", Value: number(p.RNHours, 2)},
		{Label: "LPN Hours / Resident / Day", Value: number(p.LPNHours, 2)},
		{Label: "Aide Hours / Resident / Day", Value: number(p.AideHours, 2)},
		{Label: "Total Nurse Hours / Resident / Day", Value: number(p.TotalNurseHours, 2)},
		{Label: "Nursing Staff Turnover", Value: percent(p.Turnover)},
		{Label: "RN Turnover", Value: percent(p.RNTurnover)},
	}
	v.Info = []stat{
		{Label: "Ownership", Value: orNA(p.Ownership)},
		{Label: "Certified Beds", Value: number(p.Beds, 0)},
		{Label: "Accepts Medicare", Value: yesNo(p.AcceptsMedicare)},
		{Label: "Accepts Medicaid", Value: yesNo(p.AcceptsMedicaid)},
		{Label: "Abuse Citation", Value: yesNo(p.AbuseIcon)},
	}

	if page.Wages.Computable() {
		for _, role := range domain.Roles {
			card := wageCard{
				Role: role.Label(),
				Rate: money(page.Wages.Rates[role]) + "/hr",
				Tier: page.WageTiers.Roles[role].String(),
			}
			if d, ok := page.WageTiers.Differences[role]; ok {
				card.Delta = signedPercent(d) + " vs. " + p.State + " typical"
			}
			v.Wages = append(v.Wages, card)
		}
		if page.Wages.Floored {
			v.WageNote = "At least one role was raised to the regional minimum wage."
		}
	} else {
		v.WageNote = reasonText[page.Wages.Reason]
	}

	for _, m := range page.Safety.Metrics {
		v.Safety = append(v.Safety, stat{
			Label: metricText[m.Metric],
			Value: decimal.NewFromFloat(m.Count).String(),
			Tier:  m.Tier.String(),
		})
	}
	if page.Safety.Section != domain.TierNone {
		v.SafetyScore = decimal.NewFromFloat(page.Safety.Score).Round(1).String()
	}

	schemas, err := buildSchemas(page, siteURL)
	if err != nil {
		return v, err
	}
	v.Schemas = schemas
	return v, nil
}

func facilityURL(siteURL, ccn string) string {
	return fmt.Sprintf("%s/facility/%s.html", siteURL, ccn)
}

func location(p domain.Provider) string {
	s := p.City
	if p.State != "" {
		if s != "" {
			s += ", "
		}
		s += p.State
	}
	if p.ZIP != "" {
		s += " " + p.ZIP
	}
	return s
}

func money(v float64) string {
	return "$" + domain.Cents(v).StringFixed(2)
}

func number(v *float64, places int32) string {
	if v == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*v).Round(places).String()
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*v).Round(1).String() + "%"
}

func signedPercent(v float64) string {
	d := decimal.NewFromFloat(v).Round(1)
	if d.IsPositive() {
		return "+" + d.String() + "%"
	}
	return d.String() + "%"
}

func rating(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d / 5", int(*v))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func measureScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*score).Round(1).String()
}

func optionalMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return money(*v)
}

var funcs = template.FuncMap{
	"measureScore":  measureScore,
	"optionalMoney": optionalMoney,
	"number":        number,
	"money":         money,
	"score":         func(v float64) string { return decimal.NewFromFloat(v).Round(1).String() },
	"cycleLabel": func(c int) string {
		if c == 99 {
			return "Unknown"
		}
		return fmt.Sprintf("Cycle %d", c)
	},
}
