package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/911interpreters/portal/internal/languages"
	"github.com/911interpreters/portal/internal/launcher"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	callAudio bool
	callName  string
	callEntry string
)

var callCmd = &cobra.Command{
	Use:   "call <language>",
	Short: "Start an interpretation call",
	Long: `Starts a video (or, with --audio, audio-only) call to an interpreter
for the given language. The call opens in the system browser; keep this
command running until the call is underway so the engagement can be
recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		loader := launcher.NewLoader(a.cfg.SDK.DescriptorURL, a.logger)
		l := launcher.New(loader, launcher.NewWebClient(a.cfg.SDK.CallbackPort), a.client, a.logger)

		if err := l.Load(cmd.Context()); err != nil {
			color.Yellow("The video client is still loading. Please wait a moment and try again.")
			return err
		}

		row, err := resolveLanguage(cmd, a, args[0])
		if err != nil {
			return err
		}

		channel := launcher.ChannelVideo
		if callAudio {
			channel = launcher.ChannelAudio
			if !row.AudioEligible(l.Ready()) {
				return fmt.Errorf("no audio interpreters are available for %s", row.Name)
			}
		} else if !row.VideoEligible(l.Ready()) {
			return fmt.Errorf("no video interpreters are available for %s", row.Name)
		}

		entryID := callEntry
		if entryID == "" {
			entryID = a.cfg.SDK.EntryID
		}
		if entryID == "" {
			return fmt.Errorf("no entry point configured (set sdk.entry_id or pass --entry)")
		}

		displayName := callName
		if displayName == "" {
			if sess, err := a.auth.Current(cmd.Context()); err == nil {
				displayName = sess.DisplayName
			}
		}
		if displayName == "" {
			displayName = a.cfg.SDK.DefaultName
		}

		err = l.StartCall(cmd.Context(), entryID, row.Raw, displayName, channel)
		if err != nil {
			if errors.Is(err, launcher.ErrNotReady) {
				color.Yellow("The video client is still loading. Please wait a moment and try again.")
			}
			return err
		}

		color.Green("Call opened in your browser.")
		fmt.Println("Keep this window open; press Ctrl+C to exit once connected.")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		return nil
	},
}

// resolveLanguage matches the user's spelling against the directory's
// canonical names and returns the row, whose raw name is what the backend
// expects on call initiation.
func resolveLanguage(cmd *cobra.Command, a *app, query string) (*languages.LanguageAvailability, error) {
	agg := languages.NewAggregator(a.client, a.logger)
	rows, err := agg.RefreshFull(cmd.Context())
	if err != nil {
		return nil, err
	}

	want := languages.CanonicalName(query)
	for i := range rows {
		if strings.EqualFold(rows[i].Name, want) {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("unknown language %q", query)
}

func init() {
	callCmd.Flags().BoolVar(&callAudio, "audio", false, "Start an audio-only call")
	callCmd.Flags().StringVar(&callName, "name", "", "Display name to join with")
	callCmd.Flags().StringVar(&callEntry, "entry", "", "Entry point identifier")
	rootCmd.AddCommand(callCmd)
}
