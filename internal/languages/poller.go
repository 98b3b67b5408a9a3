package languages

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Poller runs a refresh function on a fixed interval for as long as a view
// is active. It is a disposable handle: Start on activation, Stop on
// teardown. Ticks are fire-and-forget; a slow refresh does not delay or
// suppress the next one, and Stop never waits for in-flight refreshes.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context)
	logger   zerolog.Logger

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPoller creates a poller. The refresh function must tolerate being
// invoked concurrently with a previous slow invocation.
func NewPoller(interval time.Duration, refresh func(context.Context), logger zerolog.Logger) *Poller {
	return &Poller{
		interval: interval,
		refresh:  refresh,
		logger:   logger.With().Str("component", "availability-poller").Logger(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking. Call at most once.
func (p *Poller) Start() {
	p.started = true
	p.logger.Debug().Dur("interval", p.interval).Msg("Poller started")
	go p.run()
}

func (p *Poller) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go p.refresh(context.Background())
		case <-p.stop:
			p.logger.Debug().Msg("Poller stopped")
			return
		}
	}
}

// Stop cancels the interval. Idempotent; returns once no further ticks
// will be dispatched.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.started {
		<-p.done
	}
}
