package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/911interpreters/portal/internal/languages"
	"github.com/911interpreters/portal/internal/launcher"
	"github.com/911interpreters/portal/internal/metrics"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	languagesWatch bool
	languagesTop   bool
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List languages and interpreter availability",
	Long: `Lists every language the service offers with the number of interpreters
currently opted in per channel. With --watch, availability is re-polled
every poll interval until interrupted; languages missing from a refresh
drop to zero rather than showing stale counts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		agg := languages.NewAggregator(a.client, a.logger)
		loader := launcher.NewLoader(a.cfg.SDK.DescriptorURL, a.logger)

		// The availability view is only useful with a loaded client, but a
		// failed load still shows the directory with calls marked offered=no.
		_, _ = loader.Load(cmd.Context())

		if languagesTop {
			rows, err := agg.TopLanguages(cmd.Context())
			if err != nil {
				return err
			}
			printLanguages(rows, loader.Ready())
			return nil
		}

		rows, err := agg.RefreshFull(cmd.Context())
		if err != nil {
			return err
		}
		printLanguages(rows, loader.Ready())

		if !languagesWatch {
			return nil
		}
		return watchLanguages(a, agg, loader, rows)
	},
}

// watchLanguages keeps the directory fresh until interrupted.
func watchLanguages(a *app, agg *languages.Aggregator, loader *launcher.Loader, rows []languages.LanguageAvailability) error {
	var mu sync.Mutex
	current := rows

	var metricsServer *metrics.Server
	if a.cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", a.cfg.Metrics.Port)
		metricsServer = metrics.NewServer(addr, a.logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		a.logger.Info().Str("addr", addr).Msg("Metrics server started")
	}

	poller := languages.NewPoller(a.cfg.PollInterval(), func(ctx context.Context) {
		mu.Lock()
		snapshot := current
		mu.Unlock()

		fresh, err := agg.RefreshAvailabilityOnly(ctx, snapshot)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Availability refresh failed")
			return
		}

		mu.Lock()
		current = fresh
		mu.Unlock()
		printLanguages(fresh, loader.Ready())
	}, a.logger)

	poller.Start()
	defer poller.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}
	return nil
}

func printLanguages(rows []languages.LanguageAvailability, ready bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tVIDEO\tAUDIO\tCALL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.Name,
			formatCount(row.Video),
			formatCount(row.Audio),
			formatOffered(row, ready),
		)
	}
	w.Flush()
}

func formatCount(n int) string {
	if n > 0 {
		return color.GreenString("%d", n)
	}
	return color.RedString("0")
}

func formatOffered(row languages.LanguageAvailability, ready bool) string {
	switch {
	case row.VideoEligible(ready) && row.AudioEligible(ready):
		return "video, audio"
	case row.VideoEligible(ready):
		return "video"
	case row.AudioEligible(ready):
		return "audio"
	default:
		return "-"
	}
}

func init() {
	languagesCmd.Flags().BoolVarP(&languagesWatch, "watch", "w", false, "Keep refreshing availability until interrupted")
	languagesCmd.Flags().BoolVar(&languagesTop, "top", false, "Show only the most-used languages")
	rootCmd.AddCommand(languagesCmd)
}
