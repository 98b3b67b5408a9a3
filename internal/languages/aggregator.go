// Package languages merges the backend's three language endpoints into one
// availability-aware directory and keeps it fresh while a view is active.
package languages

import (
	"context"
	"strings"

	"github.com/911interpreters/portal/internal/api"
	"github.com/911interpreters/portal/internal/metrics"
	"github.com/rs/zerolog"
)

// Counts is interpreter availability per channel for one canonical name.
type Counts struct {
	Video int
	Audio int
}

// LanguageAvailability is one merged directory row. Name is canonical
// (suffix-stripped); Raw preserves the master list's spelling, which call
// initiation still sends to the backend.
type LanguageAvailability struct {
	Name  string
	Raw   string
	Video int
	Audio int
}

// VideoEligible reports whether a video call can be offered.
func (l LanguageAvailability) VideoEligible(launcherReady bool) bool {
	return l.Video > 0 && launcherReady
}

// AudioEligible reports whether an audio call can be offered. ASL is a
// sign-language-only channel and never gets an audio option.
func (l LanguageAvailability) AudioEligible(launcherReady bool) bool {
	return l.Audio > 0 && launcherReady && !strings.Contains(l.Name, "ASL")
}

// Backend is the slice of the API client the aggregator uses.
type Backend interface {
	ListLanguages(ctx context.Context) ([]api.LanguageEntry, error)
	GetAvailability(ctx context.Context) ([]api.AvailabilityEntry, error)
	GetTopLanguages(ctx context.Context) ([]api.LanguageEntry, error)
}

// Aggregator builds the merged directory. Every refresh rebuilds the rows
// from scratch; nothing is mutated incrementally.
type Aggregator struct {
	backend Backend
	logger  zerolog.Logger
}

// NewAggregator creates a directory aggregator.
func NewAggregator(backend Backend, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		backend: backend,
		logger:  logger.With().Str("component", "languages").Logger(),
	}
}

// buildIndex collapses raw availability rows onto canonical names. Within
// one pass the maximum observed count per channel wins; a _Video and an
// _Audio variant of the same language therefore merge rather than clobber
// each other.
func buildIndex(entries []api.AvailabilityEntry) map[string]Counts {
	index := make(map[string]Counts, len(entries))
	for _, entry := range entries {
		name := CanonicalName(entry.Language)
		if name == "" {
			continue
		}
		counts := index[name]
		if entry.OptedInCountVideo > counts.Video {
			counts.Video = entry.OptedInCountVideo
		}
		if entry.OptedInCountAudio > counts.Audio {
			counts.Audio = entry.OptedInCountAudio
		}
		index[name] = counts
	}
	return index
}

// merge pairs an ordered name list with an availability index. Names with
// no availability row get zero counts.
func merge(names []api.LanguageEntry, index map[string]Counts) []LanguageAvailability {
	rows := make([]LanguageAvailability, 0, len(names))
	for _, entry := range names {
		if entry.Language == "" {
			continue
		}
		name := CanonicalName(entry.Language)
		counts := index[name]
		rows = append(rows, LanguageAvailability{
			Name:  name,
			Raw:   entry.Language,
			Video: counts.Video,
			Audio: counts.Audio,
		})
	}
	return rows
}

// RefreshFull fetches the master list and availability and returns the
// merged directory in the master list's order.
func (a *Aggregator) RefreshFull(ctx context.Context) ([]LanguageAvailability, error) {
	names, err := a.backend.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}

	avail, err := a.backend.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}

	rows := merge(names, buildIndex(avail))
	a.observe("full", rows)
	return rows, nil
}

// RefreshAvailabilityOnly re-fetches availability and re-merges counts into
// the caller's existing rows. Names absent from the fresh response reset to
// zero counts rather than going stale.
func (a *Aggregator) RefreshAvailabilityOnly(ctx context.Context, current []LanguageAvailability) ([]LanguageAvailability, error) {
	avail, err := a.backend.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}

	index := buildIndex(avail)
	rows := make([]LanguageAvailability, len(current))
	for i, row := range current {
		counts := index[row.Name]
		rows[i] = LanguageAvailability{
			Name:  row.Name,
			Raw:   row.Raw,
			Video: counts.Video,
			Audio: counts.Audio,
		}
	}
	a.observe("availability", rows)
	return rows, nil
}

// TopLanguages fetches the dashboard's top language names and pairs them
// with current availability.
func (a *Aggregator) TopLanguages(ctx context.Context) ([]LanguageAvailability, error) {
	top, err := a.backend.GetTopLanguages(ctx)
	if err != nil {
		return nil, err
	}

	avail, err := a.backend.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}

	return merge(top, buildIndex(avail)), nil
}

func (a *Aggregator) observe(kind string, rows []LanguageAvailability) {
	metrics.AvailabilityRefreshes.WithLabelValues(kind).Inc()

	var video, audio int
	for _, row := range rows {
		if row.Video > 0 {
			video++
		}
		if row.Audio > 0 {
			audio++
		}
	}
	metrics.LanguagesAvailable.WithLabelValues("video").Set(float64(video))
	metrics.LanguagesAvailable.WithLabelValues("audio").Set(float64(audio))

	a.logger.Debug().
		Str("kind", kind).
		Int("languages", len(rows)).
		Int("video_available", video).
		Int("audio_available", audio).
		Msg("Availability refreshed")
}
