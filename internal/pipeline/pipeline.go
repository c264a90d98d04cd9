package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

// Loader reads every CMS record for one generation run.
type Loader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// Renderer writes facility pages, the index, and the wage summary file.
type Renderer interface {
	RenderFacility(ctx context.Context, page domain.FacilityPage) error
	RenderIndex(ctx context.Context, pages []domain.FacilitySummary) error
	WriteWages(ctx context.Context, summaries []domain.FacilitySummary) error
}

// Publisher sends facility summaries downstream.
type Publisher interface {
	Publish(ctx context.Context, runID string, summaries []domain.FacilitySummary) error
}

// RunSummary reports the counts of one generation run.
type RunSummary struct {
	RunID        string
	Facilities   int
	Computed     int
	Outliers     int
	Regions      int
	Rendered     int
	RenderErrors int
	Published    int
	Duration     time.Duration
	Profile      domain.RegionWageProfile
}

const publishAttempts = 3

// Pipeline orchestrates load, estimate, filter, aggregate, classify, render
// and publish.
type Pipeline struct {
	loader    Loader
	assembler *Assembler
	renderer  Renderer
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline. Pass a nil publisher to skip publishing.
func New(l Loader, a *Assembler, r Renderer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		loader:    l,
		assembler: a,
		renderer:  r,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once a generation run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no generation run has completed yet")
	}
	return nil
}

// Run executes one full generation run. Per-facility data problems never
// fail the run; I/O failures on shared outputs do.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	summary := RunSummary{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", summary.RunID)

	p.metrics.GenerationRunning.Set(1)
	defer p.metrics.GenerationRunning.Set(0)

	ds, err := p.loader.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load: %w", err)
	}
	summary.Facilities = len(ds.Providers)
	p.metrics.FacilitiesLoaded.Add(float64(summary.Facilities))
	logger.Info("records loaded",
		"facilities", summary.Facilities,
		"cost_reports", len(ds.CostReports),
		"with_measures", len(ds.Measures),
		"with_penalties", len(ds.Penalties),
		"with_surveys", len(ds.Surveys),
	)

	estimates := p.assembler.EstimateAll(ds)
	for _, est := range estimates {
		if est.Computable() {
			summary.Computed++
			p.metrics.WageEstimates.WithLabelValues("computed").Inc()
			continue
		}
		p.metrics.WageEstimates.WithLabelValues(string(est.Reason)).Inc()
	}

	filtered, removed := domain.FilterOutliers(estimates, p.assembler.Tables().Wages.Ceilings)
	summary.Outliers = removed
	summary.Computed -= removed
	p.metrics.OutliersDiscarded.Add(float64(removed))
	logger.Info("wages estimated", "computed", summary.Computed+removed, "after_filter", summary.Computed)

	summary.Profile = domain.BuildRegionProfile(filtered, Regions(ds))
	summary.Regions = len(summary.Profile)
	p.metrics.RegionsProfiled.Set(float64(summary.Regions))
	logger.Info("region profile built", "regions", summary.Regions)

	summaries, err := p.render(ctx, logger, ds, filtered, summary.Profile, &summary)
	if err != nil {
		return summary, err
	}

	if err := p.renderer.RenderIndex(ctx, summaries); err != nil {
		return summary, fmt.Errorf("render index: %w", err)
	}
	if err := p.renderer.WriteWages(ctx, summaries); err != nil {
		return summary, fmt.Errorf("write wages: %w", err)
	}

	if p.publisher != nil {
		n, err := p.publish(ctx, summary.RunID, summaries)
		summary.Published = n
		if err != nil {
			return summary, fmt.Errorf("publish: %w", err)
		}
	}

	summary.Duration = time.Since(start)
	p.metrics.GenerationDuration.Observe(summary.Duration.Seconds())
	p.ready.Store(true)
	logger.Info("generation complete",
		"rendered", summary.Rendered,
		"render_errors", summary.RenderErrors,
		"published", summary.Published,
		"duration", summary.Duration,
	)
	return summary, nil
}

// render assembles and writes each facility page in CCN order, stopping
// between facilities when ctx is cancelled.
func (p *Pipeline) render(ctx context.Context, logger *slog.Logger, ds domain.Dataset, estimates map[string]domain.WageEstimate, profile domain.RegionWageProfile, summary *RunSummary) ([]domain.FacilitySummary, error) {
	ccns := ds.CCNs()
	summaries := make([]domain.FacilitySummary, 0, len(ccns))
	for i, ccn := range ccns {
		if err := ctx.Err(); err != nil {
			return summaries, fmt.Errorf("render: %w", err)
		}
		page := p.assembler.Assemble(ds, ccn, estimates[ccn], profile)
		if err := p.renderer.RenderFacility(ctx, page); err != nil {
			logger.Warn("render facility failed", "ccn", ccn, "error", err)
			summary.RenderErrors++
			p.metrics.RenderErrors.Inc()
			continue
		}
		summary.Rendered++
		p.metrics.PagesRendered.Inc()
		summaries = append(summaries, domain.Summarize(page))
		if (i+1)%2000 == 0 {
			logger.Info("pages generated", "done", i+1, "total", len(ccns))
		}
	}
	return summaries, nil
}

// publish sends summaries in batches, retrying each batch with exponential
// backoff. It returns the number of summaries published.
func (p *Pipeline) publish(ctx context.Context, runID string, summaries []domain.FacilitySummary) (int, error) {
	published := 0
	for start := 0; start < len(summaries); start += p.batchSize {
		end := min(start+p.batchSize, len(summaries))
		batch := summaries[start:end]
		if err := p.publishBatch(ctx, runID, batch); err != nil {
			return published, err
		}
		published += len(batch)
		p.metrics.SummariesPublished.Add(float64(len(batch)))
		p.metrics.PublishBatchSize.Observe(float64(len(batch)))
	}
	return published, nil
}

func (p *Pipeline) publishBatch(ctx context.Context, runID string, batch []domain.FacilitySummary) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = p.publisher.Publish(ctx, runID, batch); err == nil {
			return nil
		}
		p.logger.Error("publish batch failed", "error", err, "attempt", attempt, "batch_size", len(batch))
		if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}
