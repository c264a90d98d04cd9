// Command validate performs end-to-end integrity checks on a generation run:
// the CMS input files, the wage estimates derived from them, the regional
// wage profile, and the wages.json summary written next to the pages. Every
// check recomputes from the inputs and compares.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -cost-report snf_cost_report.csv \
//	  -wages site/facility/wages.json \
//	  -wage-model wage_model.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/site"
	"github.com/couchcryptid/snf-facility-pages/internal/config"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	notes  []string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrorsShown caps the detail printed per failed phase.
const maxErrorsShown = 25

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config: %v\n", err)
		os.Exit(1)
	}

	dataDir := flag.String("data-dir", cfg.DataDir, "directory containing the CMS provider, quality, penalty and survey CSVs")
	costReport := flag.String("cost-report", cfg.CostReportFile, "SNF cost report CSV, relative to -data-dir unless absolute")
	wagesPath := flag.String("wages", "", "path to the wages.json written by a generation run (skips parity when empty)")
	wageModel := flag.String("wage-model", cfg.WageModelPath, "optional YAML overlay for the wage model and tier thresholds")
	flag.Parse()

	cfg.DataDir = *dataDir
	cfg.CostReportFile = *costReport
	cfg.WageModelPath = *wageModel

	if code := run(cfg, *wagesPath); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, wagesPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Facility Page Integrity Validation ===")
	fmt.Println()

	tables, err := config.LoadTables(cfg.WageModelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := csvload.NewLoader(csvload.Paths{
		Providers:   cfg.DataPath(cfg.ProviderFile),
		Quality:     cfg.DataPath(cfg.QualityFile),
		Penalties:   cfg.DataPath(cfg.PenaltiesFile),
		Surveys:     cfg.DataPath(cfg.SurveyFile),
		CostReports: cfg.CostReportPath(),
	}, logger)
	ds, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CMS data: %v\n", err)
		return 1
	}

	var summaries []domain.FacilitySummary
	if wagesPath != "" {
		summaries, err = site.ReadWages(wagesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load wages: %v\n", err)
			return 1
		}
	}

	assembler := pipeline.NewAssembler(tables, logger)
	estimates := assembler.EstimateAll(ds)
	filtered, _ := domain.FilterOutliers(estimates, tables.Wages.Ceilings)
	profile := domain.BuildRegionProfile(filtered, pipeline.Regions(ds))

	phases := []*phase{
		validateInputLinkage(ds),
		validateEstimates(ds, estimates, tables.Wages),
		validateOutliers(estimates, filtered, tables.Wages.Ceilings),
		validateRegionProfile(ds, filtered, profile),
	}
	if wagesPath != "" {
		phases = append(phases, validateWagesParity(summaries, ds, assembler, filtered, profile))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d providers, %d cost reports, %d with measures, %d with penalties, %d with surveys, %d summaries\n",
		len(ds.Providers), len(ds.CostReports), len(ds.Measures), len(ds.Penalties), len(ds.Surveys), len(summaries))

	for _, p := range phases {
		for _, n := range p.notes {
			fmt.Printf("  note: %s: %s\n", p.name, n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= maxErrorsShown {
				fmt.Printf("  ... and %d more\n", len(p.errors)-maxErrorsShown)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("\033[31mVALIDATION FAILED\033[0m")
		return 1
	}
	fmt.Println("\033[32mALL PHASES PASSED\033[0m")
	return 0
}
