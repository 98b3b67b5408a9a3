package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/911interpreters/portal/internal/usage"
	"github.com/spf13/cobra"
)

var (
	usagePage     int
	usagePageSize int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage totals and the per-language breakdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		agg := usage.NewAggregator(a.client, a.logger)

		summary, err := agg.LoadSummary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Total calls:   %d\n", summary.TotalCalls)
		fmt.Printf("Total minutes: %.2f\n\n", summary.TotalMinutes)

		pageSize := usagePageSize
		if pageSize <= 0 {
			pageSize = a.cfg.Languages.PageSize
		}

		breakdown, err := agg.LoadBreakdown(cmd.Context(), usagePage, pageSize)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tCALLS\tMINUTES\tSHARE")
		for _, row := range breakdown.Rows {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%s\n", row.Language, row.TotalCalls, row.Minutes, row.Percent)
		}
		w.Flush()

		fmt.Printf("\nPage %d of %d languages\n", usagePage, breakdown.Total)
		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usagePage, "page", 1, "Page number")
	usageCmd.Flags().IntVar(&usagePageSize, "page-size", 0, "Rows per page")
	rootCmd.AddCommand(usageCmd)
}
