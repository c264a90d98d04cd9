package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FacilityPage is everything rendered on one facility page.
type FacilityPage struct {
	Provider    Provider
	Wages       WageEstimate
	WageTiers   WageTiers
	Safety      SafetyTiers
	LongStay    MeasureTable
	ShortStay   MeasureTable
	Penalties   []Penalty
	Surveys     []Survey
	GeneratedAt time.Time
}

// FacilitySummary is the compact, published form of a facility page.
// Monetary values are rounded to the cent.
type FacilitySummary struct {
	CCN           string                   `json:"ccn"`
	Name          string                   `json:"name"`
	City          string                   `json:"city,omitempty"`
	State         string                   `json:"state"`
	Wages         map[Role]decimal.Decimal `json:"wages,omitempty"`
	WageReason    Reason                   `json:"wage_reason,omitempty"`
	WageTier      Tier                     `json:"wage_tier"`
	SafetyScore   *decimal.Decimal         `json:"safety_score,omitempty"`
	SafetyTier    Tier                     `json:"safety_tier"`
	LongStayTier  Tier                     `json:"long_stay_tier"`
	ShortStayTier Tier                     `json:"short_stay_tier"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// Cents rounds a dollar amount to two places.
func Cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Summarize builds the published summary for a page.
func Summarize(page FacilityPage) FacilitySummary {
	s := FacilitySummary{
		CCN:           page.Provider.CCN,
		Name:          page.Provider.Name,
		City:          page.Provider.City,
		State:         page.Provider.State,
		WageReason:    page.Wages.Reason,
		WageTier:      page.WageTiers.Section,
		SafetyTier:    page.Safety.Section,
		LongStayTier:  page.LongStay.Section,
		ShortStayTier: page.ShortStay.Section,
		GeneratedAt:   page.GeneratedAt,
	}
	if page.Wages.Computable() {
		s.Wages = make(map[Role]decimal.Decimal, len(Roles))
		for _, role := range Roles {
			s.Wages[role] = Cents(page.Wages.Rates[role])
		}
	}
	if page.Safety.Section != TierNone {
		d := decimal.NewFromFloat(page.Safety.Score).Round(1)
		s.SafetyScore = &d
	}
	return s
}
