package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/compare"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/site"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// patch-compare: push wages.json and provider contact details into the
// comparison tool page.
func patchCompareCmd() *cobra.Command {
	var htmlPath, wagesPath string
	cmd := &cobra.Command{
		Use:   "patch-compare",
		Short: "Update wages, address and phone in the comparison tool data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if htmlPath == "" {
				htmlPath = cfg.CompareHTML
			}
			if wagesPath == "" {
				wagesPath = filepath.Join(cfg.OutputDir, site.WagesFile)
			}

			summaries, err := site.ReadWages(wagesPath)
			if err != nil {
				return fmt.Errorf("read wages: %w", err)
			}

			contacts := make(map[string]compare.Contact)
			err = csvload.ReadRows(cmd.Context(), cfg.DataPath(cfg.ProviderFile), func(r domain.Row) {
				p := domain.ParseProvider(r)
				if p.CCN != "" {
					contacts[p.CCN] = compare.Contact{Address: p.Address, Phone: p.Phone}
				}
			})
			if err != nil {
				return fmt.Errorf("read providers: %w", err)
			}

			res, err := compare.PatchFile(htmlPath, summaries, contacts)
			if err != nil {
				return err
			}
			logger.Info("compare data patched", "path", htmlPath, "rows", res.Rows,
				"wages_updated", res.WagesUpdated, "wages_cleared", res.WagesCleared, "unmatched", res.Unmatched)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated %d facilities in %s\n", res.Rows, htmlPath)
			fmt.Fprintf(out, "  %d with wages, %d without, %d not in %s\n", res.WagesUpdated, res.WagesCleared, res.Unmatched, wagesPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&htmlPath, "html", "", "comparison tool page (default COMPARE_HTML)")
	cmd.Flags().StringVar(&wagesPath, "wages", "", "wage summary file (default <output>/wages.json)")
	return cmd
}
