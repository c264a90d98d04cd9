// Command genmock writes a synthetic CMS dataset for local runs and tests,
// then loads it through the real loader and estimator and prints the counts
// test assertions depend on.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -facilities 200 -seed 1
//	DATA_DIR=data/mock PROVIDER_FILE=NH_ProviderInfo_mock.csv ... go run ./cmd/snfpages generate
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sort"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/mockdata"
	"github.com/couchcryptid/snf-facility-pages/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory for the mock CSV files")
	facilities := flag.Int("facilities", 200, "number of facilities to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	files, err := mockdata.Generate(*out, mockdata.Options{Facilities: *facilities, Seed: *seed})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	for _, p := range []string{files.Providers, files.Quality, files.Penalties, files.Surveys, files.CostReports} {
		log.Printf("wrote %s", p)
	}

	ds, err := csvload.NewLoader(csvload.Paths{
		Providers:   files.Providers,
		Quality:     files.Quality,
		Penalties:   files.Penalties,
		Surveys:     files.Surveys,
		CostReports: files.CostReports,
	}, slog.New(slog.NewTextHandler(io.Discard, nil))).Load(context.Background())
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	printStats(ds)
	return nil
}

type stateCount struct {
	state string
	count int
}

func printStats(ds domain.Dataset) {
	tables := domain.DefaultTables()
	a := pipeline.NewAssembler(tables, slog.New(slog.NewTextHandler(io.Discard, nil)))
	estimates := a.EstimateAll(ds)
	filtered, removed := domain.FilterOutliers(estimates, tables.Wages.Ceilings)
	profile := domain.BuildRegionProfile(filtered, pipeline.Regions(ds))

	reasons := map[domain.Reason]int{}
	computed, floored := 0, 0
	for _, est := range filtered {
		if !est.Computable() {
			reasons[est.Reason]++
			continue
		}
		computed++
		if est.Floored {
			floored++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Facilities: %d, cost reports: %d\n", len(ds.Providers), len(ds.CostReports))
	fmt.Printf("Computable after filter: %d (floored %d), outliers removed: %d\n", computed, floored, removed)
	for _, r := range []domain.Reason{
		domain.ReasonNoCostReport, domain.ReasonMissingInput, domain.ReasonNoCensus,
		domain.ReasonNoNetSalary, domain.ReasonNoStaffHours, domain.ReasonFloorExhausted,
		domain.ReasonOutOfBounds, domain.ReasonOutlier,
	} {
		if n := reasons[r]; n > 0 {
			fmt.Printf("  %-16s %d\n", r, n)
		}
	}

	counts := map[string]int{}
	for _, p := range ds.Providers {
		counts[p.State]++
	}
	sc := make([]stateCount, 0, len(counts))
	for s, c := range counts {
		sc = append(sc, stateCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool {
		if sc[i].count != sc[j].count {
			return sc[i].count > sc[j].count
		}
		return sc[i].state < sc[j].state
	})

	fmt.Printf("States (%d):\n", len(sc))
	for _, s := range sc {
		line := fmt.Sprintf("  %s=%d", s.state, s.count)
		if rn, ok := profile.Typical(s.state, domain.RoleRN); ok {
			line += fmt.Sprintf("  typical RN %s", domain.Cents(rn).StringFixed(2))
		}
		fmt.Println(line)
	}
}
