package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snf_pages"

// Metrics holds the Prometheus counters, histograms, and gauges for page generation.
type Metrics struct {
	FacilitiesLoaded  prometheus.Counter
	WageEstimates     *prometheus.CounterVec // labels: outcome={computed,<reason>}
	OutliersDiscarded prometheus.Counter
	RegionsProfiled   prometheus.Gauge
	PagesRendered     prometheus.Counter
	RenderErrors      prometheus.Counter
	GenerationRunning prometheus.Gauge

	GenerationDuration prometheus.Histogram

	// Kafka summary publishing.
	SummariesPublished prometheus.Counter
	PublishBatchSize   prometheus.Histogram

	// Street View fetching.
	ImagesFetched      *prometheus.CounterVec // labels: outcome={saved,skipped,no_imagery,error}
	StreetViewDuration prometheus.Histogram
}

// NewMetrics creates and registers all generator metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FacilitiesLoaded,
		m.WageEstimates,
		m.OutliersDiscarded,
		m.RegionsProfiled,
		m.PagesRendered,
		m.RenderErrors,
		m.GenerationRunning,
		m.GenerationDuration,
		m.SummariesPublished,
		m.PublishBatchSize,
		m.ImagesFetched,
		m.StreetViewDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FacilitiesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facilities_loaded_total",
			Help:      "Total provider records loaded.",
		}),
		WageEstimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wage_estimates_total",
			Help:      "Wage estimates by outcome: computed or the reason they were not.",
		}, []string{"outcome"}),
		OutliersDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outliers_discarded_total",
			Help:      "Wage estimates discarded for exceeding a role ceiling.",
		}),
		RegionsProfiled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_profiled",
			Help:      "Regions with a typical wage profile in the last run.",
		}),
		PagesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Facility pages written.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Facility pages that failed to render.",
		}),
		GenerationRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_running",
			Help:      "1 while a generation run is active, 0 otherwise.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of a complete generation run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      "Facility summaries written to Kafka.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of summaries per Kafka write.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		ImagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_fetched_total",
			Help:      "Street View image fetches by outcome.",
		}, []string{"outcome"}),
		StreetViewDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "streetview_request_duration_seconds",
			Help:      "Street View API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
