// Package csvload reads the CMS nursing-home CSV datasets into a domain.Dataset.
package csvload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

const bom = "\ufeff"

// Paths locates each CMS dataset. Only Providers is required.
type Paths struct {
	Providers   string
	Quality     string
	Penalties   string
	Surveys     string
	CostReports string
}

// Loader reads CMS datasets from disk.
type Loader struct {
	paths  Paths
	logger *slog.Logger
}

// NewLoader creates a Loader for the given dataset paths.
func NewLoader(paths Paths, logger *slog.Logger) *Loader {
	return &Loader{paths: paths, logger: logger}
}

// Load reads every dataset. A missing optional dataset is logged and left
// empty; a missing provider file is an error.
func (l *Loader) Load(ctx context.Context) (domain.Dataset, error) {
	ds := domain.Dataset{
		Providers:   make(map[string]domain.Provider),
		CostReports: make(map[string]domain.CostReport),
		Measures:    make(map[string][]domain.QualityMeasure),
		Penalties:   make(map[string][]domain.Penalty),
		Surveys:     make(map[string][]domain.Survey),
	}

	err := ReadRows(ctx, l.paths.Providers, func(r domain.Row) {
		if p := domain.ParseProvider(r); p.CCN != "" {
			ds.Providers[p.CCN] = p
		}
	})
	if err != nil {
		return ds, fmt.Errorf("providers: %w", err)
	}

	optional := []struct {
		name string
		path string
		fn   func(domain.Row)
	}{
		{"quality measures", l.paths.Quality, func(r domain.Row) {
			if m := domain.ParseQualityMeasure(r); m.CCN != "" {
				ds.Measures[m.CCN] = append(ds.Measures[m.CCN], m)
			}
		}},
		{"penalties", l.paths.Penalties, func(r domain.Row) {
			if p := domain.ParsePenalty(r); p.CCN != "" {
				ds.Penalties[p.CCN] = append(ds.Penalties[p.CCN], p)
			}
		}},
		{"surveys", l.paths.Surveys, func(r domain.Row) {
			if s := domain.ParseSurvey(r); s.CCN != "" {
				ds.Surveys[s.CCN] = append(ds.Surveys[s.CCN], s)
			}
		}},
		{"cost reports", l.paths.CostReports, func(r domain.Row) {
			if c := domain.ParseCostReport(r); c.CCN != "" {
				ds.CostReports[c.CCN] = c
			}
		}},
	}
	for _, o := range optional {
		if o.path == "" {
			l.logger.Warn("dataset not configured, skipping", "dataset", o.name)
			continue
		}
		err := ReadRows(ctx, o.path, o.fn)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("dataset missing, skipping", "dataset", o.name, "path", o.path)
			continue
		}
		if err != nil {
			return ds, fmt.Errorf("%s: %w", o.name, err)
		}
	}
	return ds, nil
}

// ReadRows streams a UTF-8 CSV file with a header row, calling fn for each
// record keyed by header. A leading byte order mark is ignored and short
// rows leave trailing columns empty.
func ReadRows(ctx context.Context, path string, fn func(domain.Row)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return readRows(ctx, f, fn)
}

func readRows(ctx context.Context, r io.Reader, fn func(domain.Row)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, bom))
	}

	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		row := make(domain.Row, len(cols))
		for i, col := range cols {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		fn(row)
	}
}
