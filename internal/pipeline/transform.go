package pipeline

import (
	"log/slog"
	"sort"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// Assembler turns loaded records into classified facility pages using the
// domain estimator and classifiers.
type Assembler struct {
	tables    domain.Tables
	estimator *domain.Estimator
	logger    *slog.Logger
}

// NewAssembler creates an Assembler for the given constant tables.
func NewAssembler(tables domain.Tables, logger *slog.Logger) *Assembler {
	return &Assembler{
		tables:    tables,
		estimator: domain.NewEstimator(tables.Wages),
		logger:    logger,
	}
}

// Tables returns the constant tables in use.
func (a *Assembler) Tables() domain.Tables {
	return a.tables
}

// EstimateAll estimates wages for every provider. Providers without a cost
// report are not computable.
func (a *Assembler) EstimateAll(ds domain.Dataset) map[string]domain.WageEstimate {
	out := make(map[string]domain.WageEstimate, len(ds.Providers))
	for ccn, p := range ds.Providers {
		var cost *domain.CostReport
		if c, ok := ds.CostReports[ccn]; ok {
			cost = &c
		}
		est := a.estimator.Estimate(p, cost)
		if !est.Computable() {
			a.logger.Debug("wage estimate not computable", "ccn", ccn, "reason", est.Reason)
		}
		out[ccn] = est
	}
	return out
}

// Regions maps each provider CCN to its state code.
func Regions(ds domain.Dataset) map[string]string {
	out := make(map[string]string, len(ds.Providers))
	for ccn, p := range ds.Providers {
		out[ccn] = p.State
	}
	return out
}

// Assemble classifies one facility and collects everything its page shows.
func (a *Assembler) Assemble(ds domain.Dataset, ccn string, est domain.WageEstimate, profile domain.RegionWageProfile) domain.FacilityPage {
	p := ds.Providers[ccn]
	th := a.tables.Tiers

	var longStay, shortStay []domain.QualityMeasure
	for _, m := range ds.Measures[ccn] {
		switch {
		case m.IsLongStay():
			longStay = append(longStay, m)
		case m.IsShortStay():
			shortStay = append(shortStay, m)
		}
	}
	byCode := func(ms []domain.QualityMeasure) {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Code < ms[j].Code })
	}
	byCode(longStay)
	byCode(shortStay)

	penalties := append([]domain.Penalty(nil), ds.Penalties[ccn]...)
	sort.SliceStable(penalties, func(i, j int) bool { return penalties[i].Date > penalties[j].Date })

	surveys := append([]domain.Survey(nil), ds.Surveys[ccn]...)
	sort.SliceStable(surveys, func(i, j int) bool { return surveys[i].Cycle < surveys[j].Cycle })

	return domain.FacilityPage{
		Provider:    p,
		Wages:       est,
		WageTiers:   th.ClassifyWages(est, p.State, profile),
		Safety:      th.ClassifySafety(p),
		LongStay:    th.ClassifyMeasures(longStay),
		ShortStay:   th.ClassifyMeasures(shortStay),
		Penalties:   penalties,
		Surveys:     surveys,
		GeneratedAt: domain.Now(),
	}
}
