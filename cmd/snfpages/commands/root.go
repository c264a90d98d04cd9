package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/config"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	dataDir    string
	costReport string
	outputDir  string
	siteURL    string
	wageModel  string
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "snfpages",
		Short:             "Static facility pages and wage estimates for skilled nursing facilities",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "CMS CSV directory (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&costReport, "cost-report", "", "SNF cost report CSV, relative to the data directory unless absolute (overrides COST_REPORT_FILE)")
	root.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for pages (overrides OUTPUT_DIR)")
	root.PersistentFlags().StringVar(&siteURL, "site-url", "", "canonical site URL (overrides SITE_URL)")
	root.PersistentFlags().StringVar(&wageModel, "wage-model", "", "YAML wage model overrides (overrides WAGE_MODEL_PATH)")

	root.AddCommand(generateCmd(), serveCmd(), patchCompareCmd(), fetchImagesCmd())
	return root
}

// loadConfig reads the environment, then applies any flags set on the
// command line.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		loaded.DataDir = dataDir
	}
	if flags.Changed("cost-report") {
		loaded.CostReportFile = costReport
	}
	if flags.Changed("output") {
		loaded.OutputDir = outputDir
	}
	if flags.Changed("site-url") {
		loaded.SiteURL = siteURL
	}
	if flags.Changed("wage-model") {
		loaded.WageModelPath = wageModel
	}
	cfg = loaded
	logger = observability.NewLogger(cfg)
	return nil
}

// loaderPaths resolves every CMS dataset against the configured data
// directory.
func loaderPaths(c *config.Config) csvload.Paths {
	return csvload.Paths{
		Providers:   c.DataPath(c.ProviderFile),
		Quality:     c.DataPath(c.QualityFile),
		Penalties:   c.DataPath(c.PenaltiesFile),
		Surveys:     c.DataPath(c.SurveyFile),
		CostReports: c.CostReportPath(),
	}
}
