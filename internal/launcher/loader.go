// Package launcher starts interpretation calls through the externally
// hosted video client. The client descriptor is loaded at most once per
// process; each call gets a fresh client instance and a lifecycle listener
// that records the engagement identifier to the backend.
package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Descriptor is the video client's bootstrap metadata, hosted remotely and
// fetched at runtime.
type Descriptor struct {
	EntryBaseURL string `json:"entry_base_url"`
	Version      string `json:"version"`
}

// Loader fetches the descriptor exactly once per process lifetime.
// Concurrent callers share the single pending attempt and observe the same
// outcome; a failed load is not retried.
type Loader struct {
	url    string
	client *http.Client
	logger zerolog.Logger

	once sync.Once
	desc *Descriptor
	err  error
}

// NewLoader creates a descriptor loader.
func NewLoader(url string, logger zerolog.Logger) *Loader {
	return &Loader{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger.With().Str("component", "sdk-loader").Logger(),
	}
}

// Load returns the descriptor, fetching it on the first call.
func (l *Loader) Load(ctx context.Context) (*Descriptor, error) {
	l.once.Do(func() {
		l.desc, l.err = l.fetch(ctx)
		if l.err != nil {
			l.logger.Error().Err(l.err).Str("url", l.url).Msg("Failed to load video client descriptor")
		} else {
			l.logger.Info().Str("version", l.desc.Version).Msg("Video client ready")
		}
	})
	return l.desc, l.err
}

// Ready reports whether a successful load has completed.
func (l *Loader) Ready() bool {
	return l.desc != nil && l.err == nil
}

func (l *Loader) fetch(ctx context.Context) (*Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("launcher: invalid descriptor URL: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("launcher: descriptor fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("launcher: descriptor fetch returned %d", resp.StatusCode)
	}

	var desc Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("launcher: failed to decode descriptor: %w", err)
	}
	if desc.EntryBaseURL == "" {
		return nil, fmt.Errorf("launcher: descriptor is missing entry_base_url")
	}
	return &desc, nil
}
