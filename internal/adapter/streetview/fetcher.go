package streetview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

// ImageFetcher returns the image bytes for an address.
type ImageFetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// Target is one facility to photograph.
type Target struct {
	CCN     string
	Address string
}

// Targets lists facilities that have a street address, in CCN order.
func Targets(providers map[string]domain.Provider) []Target {
	out := make([]Target, 0, len(providers))
	for ccn, p := range providers {
		if ccn == "" || p.Address == "" {
			continue
		}
		out = append(out, Target{
			CCN:     ccn,
			Address: fmt.Sprintf("%s, %s, %s %s", p.Address, p.City, p.State, p.ZIP),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CCN < out[j].CCN })
	return out
}

// Failure records why a facility has no image.
type Failure struct {
	CCN     string
	Message string
}

// Report summarizes a fetch run.
type Report struct {
	Total    int
	Skipped  int
	Saved    int
	Failures []Failure
}

// Fetcher saves one <ccn>.jpg per target into a directory.
type Fetcher struct {
	images  ImageFetcher
	dir     string
	delay   time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher that pauses delay between API requests.
func NewFetcher(images ImageFetcher, dir string, delay time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{images: images, dir: dir, delay: delay, metrics: metrics, logger: logger}
}

// Run fetches every target without an image on disk. Per-facility failures
// are collected in the report; only a cancelled context or an unwritable
// directory returns an error.
func (f *Fetcher) Run(ctx context.Context, targets []Target) (Report, error) {
	report := Report{Total: len(targets)}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return report, fmt.Errorf("create image dir: %w", err)
	}

	var pending []Target
	for _, t := range targets {
		if _, err := os.Stat(f.path(t.CCN)); err == nil {
			report.Skipped++
			f.metrics.ImagesFetched.WithLabelValues("skipped").Inc()
			continue
		}
		pending = append(pending, t)
	}
	f.logger.Info("fetching street view images", "total", report.Total, "already_downloaded", report.Skipped, "remaining", len(pending))

	for i, t := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		img, err := f.images.Fetch(ctx, t.Address)
		switch {
		case err == nil:
			if werr := os.WriteFile(f.path(t.CCN), img, 0o644); werr != nil {
				return report, fmt.Errorf("write image %s: %w", t.CCN, werr)
			}
			report.Saved++
			f.metrics.ImagesFetched.WithLabelValues("saved").Inc()
		case errors.Is(err, ErrNoImagery):
			report.Failures = append(report.Failures, Failure{CCN: t.CCN, Message: err.Error()})
			f.metrics.ImagesFetched.WithLabelValues("no_imagery").Inc()
		default:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failures = append(report.Failures, Failure{CCN: t.CCN, Message: err.Error()})
			f.metrics.ImagesFetched.WithLabelValues("error").Inc()
			f.logger.Debug("street view fetch failed", "ccn", t.CCN, "error", err)
		}

		if (i+1)%100 == 0 {
			f.logger.Info("street view progress", "done", i+1, "total", len(pending), "saved", report.Saved, "failed", len(report.Failures))
		}
		if i < len(pending)-1 && !retry.SleepWithContext(ctx, f.delay) {
			return report, ctx.Err()
		}
	}
	return report, nil
}

func (f *Fetcher) path(ccn string) string {
	return filepath.Join(f.dir, ccn+".jpg")
}

// WriteErrorLog writes one "<ccn>: <message>" line per failure.
func WriteErrorLog(path string, failures []Failure) error {
	var b strings.Builder
	for _, fl := range failures {
		fmt.Fprintf(&b, "%s: %s\n", fl.CCN, fl.Message)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}
