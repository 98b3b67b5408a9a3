package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// API client metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "Total REST backend requests issued",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_api_request_errors_total",
			Help: "REST backend requests that failed, by error kind",
		},
		[]string{"endpoint", "kind"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_api_request_duration_seconds",
			Help:    "REST backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Availability metrics
	AvailabilityRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_availability_refreshes_total",
			Help: "Language availability refresh passes",
		},
		[]string{"kind"},
	)

	LanguagesAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_languages_available",
			Help: "Languages with at least one interpreter opted in, per channel",
		},
		[]string{"channel"},
	)

	// Call metrics
	CallsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_calls_started_total",
			Help: "Interpretation calls started",
		},
		[]string{"channel"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestErrors,
		APIRequestDuration,
		AvailabilityRefreshes,
		LanguagesAvailable,
		CallsStarted,
	)
}

// Server is the metrics HTTP server, used by the long-running watch mode
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
