package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
)

var (
	pivotHTML string
	pivotOut  string
)

func init() {
	pivotCmd.Flags().StringVar(&pivotHTML, "html", "", "Saved comparison page HTML.")
	pivotCmd.Flags().StringVar(&pivotOut, "out", ".", "Directory for Features.csv and Specifications.csv.")
	_ = pivotCmd.MarkFlagRequired("html")
	rootCmd.AddCommand(pivotCmd)
}

var pivotCmd = &cobra.Command{
	Use:   "pivot --html <page.html> [--out <dir>]",
	Short: "Pivot a saved variant comparison page into feature and specification matrices.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(pivotHTML)
		if err != nil {
			return fmt.Errorf("open comparison html: %w", err)
		}
		defer f.Close()

		comparison, err := carexpert.ParseComparison(f)
		if err != nil {
			return err
		}
		written, err := carexpert.WriteComparisonCSV(pivotOut, comparison)
		if err != nil {
			return err
		}
		slog.Info("comparison pivoted",
			"columns", comparison.Columns(),
			"features", len(comparison.Features.Names()),
			"specifications", len(comparison.Specifications.Names()),
			"files", written,
		)
		return nil
	},
}
