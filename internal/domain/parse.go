package domain

import (
	"math"
	"strconv"
	"strings"
)

// Row is one CSV row keyed by header name.
type Row map[string]string

// CMS column headers.
const (
	ColCCN           = "CMS Certification Number (CCN)"
	ColCostReportCCN = "Provider CCN"

	colName       = "Provider Name"
	colAddress    = "Provider Address"
	colCity       = "City/Town"
	colState      = "State"
	colZIP        = "ZIP Code"
	colPhone      = "Telephone Number"
	colOwnership  = "Ownership Type"
	colBeds       = "Number of Certified Beds"
	colOverall    = "Overall Rating"
	colHealth     = "Health Inspection Rating"
	colQM         = "QM Rating"
	colStaffing   = "Staffing Rating"
	colAbuse      = "Abuse Icon"
	colMedicare   = "Medicare"
	colMedicaid   = "Medicaid"
	colResidents  = "Average Number of Residents per Day"
	colRNHours    = "Reported RN Staffing Hours per Resident per Day"
	colLPNHours   = "Reported LPN Staffing Hours per Resident per Day"
	colAideHours  = "Reported Nurse Aide Staffing Hours per Resident per Day"
	colTotalHours = "Reported Total Nurse Staffing Hours per Resident per Day"
	colTurnover   = "Total nursing staff turnover"
	colRNTurnover = "Registered Nurse turnover"
	colCycle1     = "Rating Cycle 1 Total Number of Health Deficiencies"
	colCycle2     = "Rating Cycle 2/3 Total Number of Health Deficiencies"
	colComplaints = "Number of Substantiated Complaints"
	colIncidents  = "Number of Facility Reported Incidents"
	colFines      = "Number of Fines"
	colFineTotal  = "Total Amount of Fines in Dollars"
	colDenials    = "Number of Payment Denials"
	colPenalties  = "Total Number of Penalties"

	colTotalSalaries = "Total Salaries (adjusted)"
	colContractLabor = "Contract Labor"

	colMeasureCode  = "Measure Code"
	colMeasureDesc  = "Measure Description"
	colResidentType = "Resident type"
	colFourQuarter  = "Four Quarter Average Score"
	colUsedInRating = "Used in Quality Measure Five Star Rating"

	colPenaltyDate  = "Penalty Date"
	colPenaltyType  = "Penalty Type"
	colFineAmount   = "Fine Amount"
	colDenialStart  = "Payment Denial Start Date"
	colDenialLength = "Payment Denial Length in Days"

	colCycle          = "Inspection Cycle"
	colSurveyDate     = "Health Survey Date"
	colHealthDefs     = "Total Number of Health Deficiencies"
	colFireSafetyDefs = "Total Number of Fire Safety Deficiencies"
)

var quarterCols = [4]string{"Q1 Measure Score", "Q2 Measure Score", "Q3 Measure Score", "Q4 Measure Score"}

// ParseNumber parses a CMS numeric cell. Thousands separators, "$" and "%"
// are stripped. Blank, malformed, NaN and infinite values are missing.
func ParseNumber(s string) *float64 {
	s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// get returns a trimmed cell, or "" when the column is absent.
func (r Row) get(col string) string {
	return strings.TrimSpace(r[col])
}

func (r Row) number(col string) *float64 {
	return ParseNumber(r[col])
}

func (r Row) flag(col string) bool {
	return strings.EqualFold(r.get(col), "Y")
}

// ParseProvider maps a provider info row onto a Provider.
func ParseProvider(r Row) Provider {
	return Provider{
		CCN:       r.get(ColCCN),
		Name:      r.get(colName),
		Address:   r.get(colAddress),
		City:      r.get(colCity),
		State:     strings.ToUpper(r.get(colState)),
		ZIP:       r.get(colZIP),
		Phone:     r.get(colPhone),
		Ownership: r.get(colOwnership),
		Beds:      r.number(colBeds),

		OverallRating:   r.number(colOverall),
		HealthRating:    r.number(colHealth),
		QualityRating:   r.number(colQM),
		StaffingRating:  r.number(colStaffing),
		AbuseIcon:       r.flag(colAbuse),
		AcceptsMedicare: r.flag(colMedicare),
		AcceptsMedicaid: r.flag(colMedicaid),

		AvgResidents:    r.number(colResidents),
		RNHours:         r.number(colRNHours),
		LPNHours:        r.number(colLPNHours),
		AideHours:       r.number(colAideHours),
		TotalNurseHours: r.number(colTotalHours),
		Turnover:        r.number(colTurnover),
		RNTurnover:      r.number(colRNTurnover),

		Cycle1Deficiencies: r.number(colCycle1),
		Cycle2Deficiencies: r.number(colCycle2),
		Complaints:         r.number(colComplaints),
		Incidents:          r.number(colIncidents),
		Fines:              r.number(colFines),
		FineDollars:        r.number(colFineTotal),
		PaymentDenials:     r.number(colDenials),
		TotalPenalties:     r.number(colPenalties),
	}
}

// ParseCostReport maps a cost report row onto a CostReport.
func ParseCostReport(r Row) CostReport {
	return CostReport{
		CCN:           r.get(ColCostReportCCN),
		TotalSalaries: r.number(colTotalSalaries),
		ContractLabor: r.number(colContractLabor),
	}
}

// ParseQualityMeasure maps an MDS quality measure row.
func ParseQualityMeasure(r Row) QualityMeasure {
	m := QualityMeasure{
		CCN:          r.get(ColCCN),
		Code:         r.get(colMeasureCode),
		Description:  r.get(colMeasureDesc),
		ResidentType: r.get(colResidentType),
		FourQuarter:  r.number(colFourQuarter),
		UsedInRating: r.flag(colUsedInRating),
	}
	for i, col := range quarterCols {
		m.Quarters[i] = r.number(col)
	}
	return m
}

// ParsePenalty maps a penalties row.
func ParsePenalty(r Row) Penalty {
	return Penalty{
		CCN:              r.get(ColCCN),
		Date:             r.get(colPenaltyDate),
		Type:             r.get(colPenaltyType),
		FineAmount:       r.number(colFineAmount),
		DenialStart:      r.get(colDenialStart),
		DenialLengthDays: r.number(colDenialLength),
	}
}

// ParseSurvey maps a survey summary row. Unparseable cycles sort last (99).
func ParseSurvey(r Row) Survey {
	cycle := 99
	if v := r.number(colCycle); v != nil {
		cycle = int(*v)
	}
	return Survey{
		CCN:                  r.get(ColCCN),
		Cycle:                cycle,
		Date:                 r.get(colSurveyDate),
		HealthDeficiencies:   r.number(colHealthDefs),
		FireSafetyDeficiency: r.number(colFireSafetyDefs),
	}
}

// IsLongStay reports whether the measure covers long-stay residents.
func (m QualityMeasure) IsLongStay() bool {
	return strings.HasPrefix(strings.ToLower(m.ResidentType), "long")
}

// IsShortStay reports whether the measure covers short-stay residents.
func (m QualityMeasure) IsShortStay() bool {
	return strings.HasPrefix(strings.ToLower(m.ResidentType), "short")
}
