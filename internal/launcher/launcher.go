package launcher

import (
	"context"
	"errors"

	"github.com/911interpreters/portal/internal/api"
	"github.com/911interpreters/portal/internal/languages"
	"github.com/911interpreters/portal/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrNotReady is returned when a call is attempted before the video client
// has loaded. Surfaced to the user as a wait-a-moment warning.
var ErrNotReady = errors.New("launcher: video client is not ready yet")

// Channel is the call medium.
type Channel string

const (
	ChannelVideo Channel = "video"
	ChannelAudio Channel = "audio"
)

// Client is one per-call instance of the external video client. Instances
// are never reused across calls; stale lifecycle listeners must not
// accumulate.
type Client interface {
	// OnEngagementStarted registers the handler for the engagement-started
	// lifecycle event. Register before Init.
	OnEngagementStarted(handler func(engagementID string))
	Init(ctx context.Context, entryID, displayName string) error
	StartVideo(ctx context.Context) error
	Close() error
}

// ClientFactory builds a fresh Client from the loaded descriptor.
type ClientFactory func(desc *Descriptor, logger zerolog.Logger) Client

// Reporter is the backend slice used for engagement telemetry.
type Reporter interface {
	StoreVideoFlowData(ctx context.Context, data api.FlowData) error
}

// Launcher starts calls once the descriptor is loaded.
type Launcher struct {
	loader   *Loader
	factory  ClientFactory
	reporter Reporter
	logger   zerolog.Logger
}

// New creates a call launcher.
func New(loader *Loader, factory ClientFactory, reporter Reporter, logger zerolog.Logger) *Launcher {
	return &Launcher{
		loader:   loader,
		factory:  factory,
		reporter: reporter,
		logger:   logger.With().Str("component", "call-launcher").Logger(),
	}
}

// Load eagerly loads the video client descriptor.
func (l *Launcher) Load(ctx context.Context) error {
	_, err := l.loader.Load(ctx)
	return err
}

// Ready reports whether calls can be started.
func (l *Launcher) Ready() bool {
	return l.loader.Ready()
}

// StartCall begins a call to an interpreter for the given language. The
// raw (possibly suffixed) language name goes to the client; the engagement
// report carries the canonical name. Reporting is best-effort: a failed
// report never fails or rolls back the call.
func (l *Launcher) StartCall(ctx context.Context, entryID, language, displayName string, channel Channel) error {
	if !l.loader.Ready() {
		return ErrNotReady
	}
	desc, err := l.loader.Load(ctx)
	if err != nil {
		return ErrNotReady
	}

	client := l.factory(desc, l.logger)

	client.OnEngagementStarted(func(engagementID string) {
		if engagementID == "" {
			return
		}
		l.logger.Info().Str("engagement_id", engagementID).Str("language", language).Msg("Engagement started")

		if err := l.reporter.StoreVideoFlowData(context.Background(), api.FlowData{
			EngagementID: engagementID,
			Language:     language,
			LanguageDB:   languages.CanonicalName(language),
			CallType:     string(channel),
		}); err != nil {
			l.logger.Error().Err(err).Str("engagement_id", engagementID).Msg("Failed to store video flow data")
		}
	})

	if err := client.Init(ctx, entryID, displayName); err != nil {
		_ = client.Close()
		return err
	}
	if err := client.StartVideo(ctx); err != nil {
		_ = client.Close()
		return err
	}

	metrics.CallsStarted.WithLabelValues(string(channel)).Inc()
	return nil
}
