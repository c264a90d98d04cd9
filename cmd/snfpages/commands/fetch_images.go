package commands

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/streetview"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

const maxPrintedFailures = 20

// fetch-images [api-key]: download a Street View image per facility.
func fetchImagesCmd() *cobra.Command {
	var errorLog string
	cmd := &cobra.Command{
		Use:   "fetch-images [api-key]",
		Short: "Download Street View images for every facility with an address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := cfg.StreetViewAPIKey
			if len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return errors.New("street view API key required (argument or STREETVIEW_API_KEY)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			providers := make(map[string]domain.Provider)
			err := csvload.ReadRows(ctx, cfg.DataPath(cfg.ProviderFile), func(r domain.Row) {
				if p := domain.ParseProvider(r); p.CCN != "" {
					providers[p.CCN] = p
				}
			})
			if err != nil {
				return fmt.Errorf("read providers: %w", err)
			}

			metrics := observability.NewMetrics()
			client := streetview.NewClient(key, cfg.StreetViewTimeout, metrics, logger)
			fetcher := streetview.NewFetcher(client, cfg.ImagesDir, cfg.StreetViewDelay, metrics, logger)

			report, runErr := fetcher.Run(ctx, streetview.Targets(providers))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Success: %d\nFailed: %d\nAlready downloaded: %d\nImages saved to: %s/\n",
				report.Saved, len(report.Failures), report.Skipped, cfg.ImagesDir)
			for i, f := range report.Failures {
				if i == maxPrintedFailures {
					fmt.Fprintf(out, "  ... %d more\n", len(report.Failures)-maxPrintedFailures)
					break
				}
				fmt.Fprintf(out, "  %s: %s\n", f.CCN, f.Message)
			}
			if len(report.Failures) > 0 {
				if err := streetview.WriteErrorLog(errorLog, report.Failures); err != nil {
					return err
				}
				fmt.Fprintf(out, "Full error log saved to %s\n", errorLog)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&errorLog, "error-log", "streetview_errors.txt", "file listing facilities without an image")
	return cmd
}
