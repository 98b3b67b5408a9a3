package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/911interpreters/portal/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyFrom     string
	historyTo       string
	historyPage     int
	historyPageSize int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show call history for a date range",
	Long: `Shows one page of past calls. Dates are calendar days in US Eastern
time regardless of the local timezone; without --from the range is today.
Ranges wider than 31 days are rejected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var from, to *time.Time
		if historyFrom != "" {
			t, err := history.ParseDate(historyFrom)
			if err != nil {
				return fmt.Errorf("invalid --from date (want YYYY-MM-DD): %w", err)
			}
			from = &t
		}
		if historyTo != "" {
			t, err := history.ParseDate(historyTo)
			if err != nil {
				return fmt.Errorf("invalid --to date (want YYYY-MM-DD): %w", err)
			}
			to = &t
		}

		r, err := history.Select(history.DateRange{}, from, to)
		if err != nil {
			if errors.Is(err, history.ErrRangeTooLarge) {
				return fmt.Errorf("date range is limited to %d days", history.MaxRangeDays)
			}
			return err
		}

		pageSize := historyPageSize
		if pageSize <= 0 {
			pageSize = a.cfg.History.PageSize
		}

		engine := history.NewEngine(a.client, a.logger)
		defer engine.Close()

		page, err := engine.Query(cmd.Context(), historyPage, pageSize, r)
		if err != nil {
			return err
		}

		fmt.Printf("Calls %s to %s (page %d, %d total)\n\n", r.StartParam(), r.EndParam(), page.PageNum, page.Total)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tENDED\tLANGUAGE\tCHANNEL\tDURATION\tBILLED")
		for _, rec := range page.Records {
			duration := "-"
			if rec.DurationSeconds != nil {
				duration = history.FormatDuration(*rec.DurationSeconds)
			}
			billed := "-"
			if rec.BilledAmount != nil {
				billed = fmt.Sprintf("$%.2f", *rec.BilledAmount)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				history.DisplayTimestamp(rec.StartTimestamp),
				history.DisplayTimestamp(rec.EndTimestamp),
				rec.Language,
				rec.Channel,
				duration,
				billed,
			)
		}
		w.Flush()

		if len(page.Records) == 0 {
			color.Yellow("No calls in this range.")
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Range start (YYYY-MM-DD, Eastern)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "Range end (YYYY-MM-DD, Eastern)")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 0, "Records per page")
	rootCmd.AddCommand(historyCmd)
}
