package domain

// Reason explains why a wage estimate is not computable.
type Reason string

const (
	ReasonNoCostReport   Reason = "no_cost_report"
	ReasonMissingInput   Reason = "missing_input"
	ReasonNoCensus       Reason = "no_census"
	ReasonNoNetSalary    Reason = "no_net_salary"
	ReasonNoStaffHours   Reason = "no_staff_hours"
	ReasonFloorExhausted Reason = "floor_exhausted"
	ReasonOutOfBounds    Reason = "out_of_bounds"
	ReasonOutlier        Reason = "outlier"
)

// WageEstimate is a complete per-role hourly wage estimate, or a reason why
// none could be made. It is never partial.
type WageEstimate struct {
	Rates   map[Role]float64 `json:"rates,omitempty"`
	Floored bool             `json:"floored,omitempty"`
	Reason  Reason           `json:"reason,omitempty"`
}

// Unavailable returns a not-computable estimate.
func Unavailable(r Reason) WageEstimate {
	return WageEstimate{Reason: r}
}

// Computable reports whether the estimate carries a wage for every role.
func (e WageEstimate) Computable() bool {
	if e.Reason != "" {
		return false
	}
	for _, role := range Roles {
		if _, ok := e.Rates[role]; !ok {
			return false
		}
	}
	return true
}

// Rate returns the wage for a role.
func (e WageEstimate) Rate(role Role) (float64, bool) {
	if !e.Computable() {
		return 0, false
	}
	v, ok := e.Rates[role]
	return v, ok
}

// Estimator derives per-role wages from salary expense and staffing hours.
type Estimator struct {
	model WageModel
}

// NewEstimator creates an Estimator for the given wage model.
func NewEstimator(m WageModel) *Estimator {
	return &Estimator{model: m}
}

// Estimate computes the wage estimate for one facility. A nil cost report
// yields ReasonNoCostReport.
func (e *Estimator) Estimate(p Provider, c *CostReport) WageEstimate {
	if c == nil {
		return Unavailable(ReasonNoCostReport)
	}
	if c.TotalSalaries == nil || p.AvgResidents == nil ||
		p.RNHours == nil || p.LPNHours == nil || p.AideHours == nil {
		return Unavailable(ReasonMissingInput)
	}
	census := *p.AvgResidents
	if census <= 0 {
		return Unavailable(ReasonNoCensus)
	}

	net := *c.TotalSalaries
	if c.ContractLabor != nil {
		net -= *c.ContractLabor
	}
	if net <= 0 {
		return Unavailable(ReasonNoNetSalary)
	}
	budget := net * e.model.NursingShare

	hprd := map[Role]float64{
		RoleNP:  e.model.ExtenderDailyHours / census,
		RoleRN:  *p.RNHours,
		RoleLPN: *p.LPNHours,
		RoleCNA: *p.AideHours,
	}
	annual := make(map[Role]float64, len(hprd))
	for role, h := range hprd {
		annual[role] = h * census * 365
	}

	rates, ok := e.distribute(budget, annual, Roles)
	if !ok {
		return Unavailable(ReasonNoStaffHours)
	}

	floored := false
	if minWage := e.model.MinWage(p.State); rates[RoleCNA] < minWage {
		remaining := budget - annual[RoleCNA]*minWage
		if remaining <= 0 {
			return Unavailable(ReasonFloorExhausted)
		}
		rest, ok := e.distribute(remaining, annual, []Role{RoleNP, RoleRN, RoleLPN})
		if !ok {
			return Unavailable(ReasonFloorExhausted)
		}
		rest[RoleCNA] = minWage
		rates = rest
		floored = true
	}

	for _, role := range Roles {
		if !e.model.Bounds[role].Contains(rates[role]) {
			return Unavailable(ReasonOutOfBounds)
		}
	}
	return WageEstimate{Rates: rates, Floored: floored}
}

// distribute splits budget across roles in proportion to weighted annual
// hours. It fails when the weighted total is not positive.
func (e *Estimator) distribute(budget float64, annual map[Role]float64, roles []Role) (map[Role]float64, bool) {
	var weighted float64
	for _, role := range roles {
		weighted += annual[role] * e.model.Weights[role]
	}
	if weighted <= 0 {
		return nil, false
	}
	base := budget / weighted
	rates := make(map[Role]float64, len(Roles))
	for _, role := range roles {
		rates[role] = base * e.model.Weights[role]
	}
	return rates, true
}
