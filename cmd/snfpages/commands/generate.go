package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	kafkaadapter "github.com/couchcryptid/snf-facility-pages/internal/adapter/kafka"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/site"
	"github.com/couchcryptid/snf-facility-pages/internal/config"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
	"github.com/couchcryptid/snf-facility-pages/internal/pipeline"
)

const summaryPartitions = 3

// generate: one full generation run.
func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate facility pages, the index and wages.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closeFn, err := buildPipeline(ctx, observability.NewMetrics())
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// buildPipeline wires the loader, renderer and optional Kafka publisher. The
// returned func releases the publisher.
func buildPipeline(ctx context.Context, metrics *observability.Metrics) (*pipeline.Pipeline, func(), error) {
	tables, err := config.LoadTables(cfg.WageModelPath)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := site.NewRenderer(cfg.OutputDir, cfg.SiteURL, logger)
	if err != nil {
		return nil, nil, err
	}
	loader := csvload.NewLoader(loaderPaths(cfg), logger)

	closeFn := func() {}
	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		if err := w.EnsureTopic(ctx, summaryPartitions); err != nil {
			logger.Warn("ensure summary topic failed", "topic", cfg.KafkaTopic, "error", err)
		}
		publisher = w
		closeFn = func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("summary publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("summary publishing disabled")
	}

	p := pipeline.New(loader, pipeline.NewAssembler(tables, logger), renderer, publisher, logger, metrics, cfg.BatchSize)
	return p, closeFn, nil
}

func printSummary(w io.Writer, s pipeline.RunSummary) {
	fmt.Fprintf(w, "Run %s\n", s.RunID)
	fmt.Fprintf(w, "  %d facilities\n", s.Facilities)
	fmt.Fprintf(w, "  %d wages computed (pre-filter)\n", s.Computed+s.Outliers)
	fmt.Fprintf(w, "  %d wages after outlier filter across %d regions\n", s.Computed, s.Regions)
	fmt.Fprintf(w, "  %d pages generated in %s/ (%d failed)\n", s.Rendered, cfg.OutputDir, s.RenderErrors)
	if cfg.KafkaEnabled {
		fmt.Fprintf(w, "  %d summaries published to %s\n", s.Published, cfg.KafkaTopic)
	}
	fmt.Fprintf(w, "Done in %s\n", s.Duration.Round(time.Millisecond))
}
