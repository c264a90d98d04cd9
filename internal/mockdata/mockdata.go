// Package mockdata writes small synthetic CMS datasets in the same CSV layout
// as the real provider, quality, penalty, survey and cost report files.
// Output is deterministic for a given seed.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

// File names written by Generate.
const (
	ProviderFile   = "NH_ProviderInfo_mock.csv"
	QualityFile    = "NH_QualityMsr_MDS_mock.csv"
	PenaltiesFile  = "NH_Penalties_mock.csv"
	SurveyFile     = "NH_SurveySummary_mock.csv"
	CostReportFile = "CostReportsnf_mock.csv"
)

// Files holds the paths Generate wrote.
type Files struct {
	Dir         string
	Providers   string
	Quality     string
	Penalties   string
	Surveys     string
	CostReports string
}

// Options controls the generated population.
type Options struct {
	Facilities int
	Seed       uint64
}

// Every tenth facility has no cost report and every twenty-fifth reports
// salaries high enough to land above the RN ceiling.
const (
	noCostReportEvery = 10
	outlierEvery      = 25
)

var (
	states = []string{"AL", "CA", "FL", "NY", "TX", "WA"}
	cities = map[string]string{
		"AL": "Montgomery", "CA": "Sacramento", "FL": "Tallahassee",
		"NY": "Albany", "TX": "Austin", "WA": "Olympia",
	}
	nameParts = []string{"Oak", "River", "Maple", "Cedar", "Willow", "Pine", "Harbor", "Summit"}
	nameKinds = []string{"Nursing Home", "Health and Rehabilitation", "Care Center", "Manor"}
	ownership = []string{"For profit - Corporation", "Non profit - Church related", "Government - County"}

	measures = []struct {
		code, desc, residentType string
	}{
		{"401", "Percentage of long-stay residents whose need for help with daily activities has increased", "Long Stay"},
		{"406", "Percentage of long-stay residents with a catheter inserted and left in their bladder", "Long Stay"},
		{"410", "Percentage of long-stay residents experiencing one or more falls with major injury", "Long Stay"},
		{"521", "Percentage of short-stay residents who were rehospitalized after a nursing home admission", "Short Stay"},
		{"522", "Percentage of short-stay residents who had an outpatient emergency department visit", "Short Stay"},
		{"523", "Percentage of short-stay residents who improved in their ability to move around on their own", "Short Stay"},
	}
)

// Generate writes one CSV per dataset into dir.
func Generate(dir string, opts Options) (Files, error) {
	if opts.Facilities < 1 {
		return Files{}, fmt.Errorf("facilities must be positive, got %d", opts.Facilities)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create %s: %w", dir, err)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eed))

	files := Files{
		Dir:         dir,
		Providers:   filepath.Join(dir, ProviderFile),
		Quality:     filepath.Join(dir, QualityFile),
		Penalties:   filepath.Join(dir, PenaltiesFile),
		Surveys:     filepath.Join(dir, SurveyFile),
		CostReports: filepath.Join(dir, CostReportFile),
	}

	g := generator{rng: rng}
	for i := range opts.Facilities {
		g.facility(i)
	}

	for _, out := range []struct {
		path   string
		header []string
		rows   [][]string
	}{
		{files.Providers, providerHeader, g.providers},
		{files.Quality, qualityHeader, g.quality},
		{files.Penalties, penaltyHeader, g.penalties},
		{files.Surveys, surveyHeader, g.surveys},
		{files.CostReports, costReportHeader, g.costReports},
	} {
		if err := writeCSV(out.path, out.header, out.rows); err != nil {
			return files, err
		}
	}
	return files, nil
}

// CCN returns the CCN Generate assigns to the i-th facility.
func CCN(i int) string {
	return fmt.Sprintf("%02d5%03d", i%len(states)+1, i)
}

var (
	providerHeader = []string{
		"CMS Certification Number (CCN)", "Provider Name", "Provider Address", "City/Town", "State", "ZIP Code",
		"Telephone Number", "Ownership Type", "Number of Certified Beds",
		"Overall Rating", "Health Inspection Rating", "QM Rating", "Staffing Rating",
		"Abuse Icon", "Medicare", "Medicaid",
		"Average Number of Residents per Day",
		"Reported RN Staffing Hours per Resident per Day",
		"Reported LPN Staffing Hours per Resident per Day",
		"Reported Nurse Aide Staffing Hours per Resident per Day",
		"Reported Total Nurse Staffing Hours per Resident per Day",
		"Total nursing staff turnover", "Registered Nurse turnover",
		"Rating Cycle 1 Total Number of Health Deficiencies",
		"Rating Cycle 2/3 Total Number of Health Deficiencies",
		"Number of Substantiated Complaints", "Number of Facility Reported Incidents",
		"Number of Fines", "Total Amount of Fines in Dollars", "Number of Payment Denials",
		"Total Number of Penalties",
	}
	qualityHeader = []string{
		"CMS Certification Number (CCN)", "Measure Code", "Measure Description", "Resident type",
		"Q1 Measure Score", "Q2 Measure Score", "Q3 Measure Score", "Q4 Measure Score",
		"Four Quarter Average Score", "Used in Quality Measure Five Star Rating",
	}
	penaltyHeader = []string{
		"CMS Certification Number (CCN)", "Penalty Date", "Penalty Type", "Fine Amount",
		"Payment Denial Start Date", "Payment Denial Length in Days",
	}
	surveyHeader = []string{
		"CMS Certification Number (CCN)", "Inspection Cycle", "Health Survey Date",
		"Total Number of Health Deficiencies", "Total Number of Fire Safety Deficiencies",
	}
	costReportHeader = []string{"Provider CCN", "Total Salaries (adjusted)", "Contract Labor"}
)

type generator struct {
	rng         *rand.Rand
	providers   [][]string
	quality     [][]string
	penalties   [][]string
	surveys     [][]string
	costReports [][]string
}

func (g *generator) facility(i int) {
	ccn := CCN(i)
	state := states[i%len(states)]
	census := 40 + g.rng.Float64()*110
	rn := 0.3 + g.rng.Float64()*0.7
	lpn := 0.4 + g.rng.Float64()*0.6
	aide := 1.8 + g.rng.Float64()*1.2
	fines := g.rng.IntN(3)
	fineDollars := 0
	if fines > 0 {
		fineDollars = 5000 + g.rng.IntN(60000)
	}

	g.providers = append(g.providers, []string{
		ccn,
		fmt.Sprintf("%s %s %s", pick(g.rng, nameParts), pick(g.rng, nameParts), pick(g.rng, nameKinds)),
		fmt.Sprintf("%d Main Street", 100+i),
		cities[state], state, fmt.Sprintf("%05d", 10000+i*37%89999),
		fmt.Sprintf("555%07d", i),
		pick(g.rng, ownership),
		strconv.Itoa(int(census*1.2) + 5),
		stars(g.rng), stars(g.rng), stars(g.rng), stars(g.rng),
		yn(i%17 == 0), "Y", yn(i%3 != 0),
		num(census, 1),
		num(rn, 5), num(lpn, 5), num(aide, 5), num(rn+lpn+aide, 5),
		num(30+g.rng.Float64()*40, 1), num(20+g.rng.Float64()*40, 1),
		strconv.Itoa(g.rng.IntN(20)), strconv.Itoa(g.rng.IntN(20)),
		strconv.Itoa(g.rng.IntN(5)), strconv.Itoa(g.rng.IntN(4)),
		strconv.Itoa(fines), strconv.Itoa(fineDollars), strconv.Itoa(g.rng.IntN(2)),
		strconv.Itoa(fines),
	})

	for _, m := range measures {
		var q [4]float64
		var sum float64
		for j := range q {
			q[j] = g.rng.Float64() * 40
			sum += q[j]
		}
		g.quality = append(g.quality, []string{
			ccn, m.code, m.desc, m.residentType,
			num(q[0], 6), num(q[1], 6), num(q[2], 6), num(q[3], 6),
			num(sum/4, 6), yn(m.code != "406"),
		})
	}

	for j := range fines {
		g.penalties = append(g.penalties, []string{
			ccn, fmt.Sprintf("2024-%02d-15", j+3), "Fine", strconv.Itoa(fineDollars / fines), "", "",
		})
	}

	for cycle := 1; cycle <= 3; cycle++ {
		g.surveys = append(g.surveys, []string{
			ccn, strconv.Itoa(cycle), fmt.Sprintf("%d-%02d-10", 2025-cycle, 1+g.rng.IntN(12)),
			strconv.Itoa(g.rng.IntN(15)), strconv.Itoa(g.rng.IntN(6)),
		})
	}

	if i%noCostReportEvery == noCostReportEvery-1 {
		return
	}
	// Salaries are backed out of a target base rate using the default wage
	// model weights, nursing share and 8 daily extender hours.
	weighted := (rn*2.2+lpn*1.4+aide*0.7)*census*365 + 8*365*3.0
	base := 18 + g.rng.Float64()*6
	if i%outlierEvery == outlierEvery-1 {
		base = 62 + g.rng.Float64()*8
	}
	contractShare := g.rng.Float64() * 0.05
	salaries := weighted * base / 0.72 / (1 - contractShare)
	g.costReports = append(g.costReports, []string{ccn, num(salaries, 0), num(salaries*contractShare, 0)})
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func pick(rng *rand.Rand, s []string) string {
	return s[rng.IntN(len(s))]
}

func stars(rng *rand.Rand) string {
	return strconv.Itoa(1 + rng.IntN(5))
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func num(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
